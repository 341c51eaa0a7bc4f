// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package metrics defines the Prometheus collectors exported at /metrics.

Collectors are registered with the default registry through promauto:

	api_requests_total{method,endpoint,status_code}
	api_request_duration_seconds{method,endpoint}
	api_active_requests
	api_rate_limit_hits_total{endpoint}
	band_submissions_total{result}
	document_store_operation_duration_seconds{backend,operation}
	document_store_operation_errors_total{backend,operation}
	document_store_conflict_retries_total{backend}
	object_store_uploads_total{prefix,result}
	object_store_upload_bytes_total{prefix}
	circuit_breaker_state{name}
	circuit_breaker_requests_total{name,result}
	circuit_breaker_state_transitions_total{name,from_state,to_state}
	app_info{version,go_version,store_backend}

The endpoint label is the chi route pattern, never the raw path.
*/
package metrics
