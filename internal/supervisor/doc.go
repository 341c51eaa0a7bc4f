// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package supervisor runs the long-lived parts of the server under suture v4.

	RootSupervisor ("blacksoundfest")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── festival-store-gc (badger backend only)
	│   └── ip-rate-limiter (when submission throttling is on)
	└── APISupervisor ("api-layer")
	    └── http-server

Crashed services are restarted with suture's backoff. A service that
returns suture.ErrDoNotRestart, like the GC loop after its store is closed,
is removed instead. Supervisor events are logged through sutureslog into
the zerolog-backed slog logger from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMaintenanceService(store)
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}
*/
package supervisor
