// Blacksoundfest API - Festival Content and Band Submission Backend
// Copyright 2026 The Blacksoundfest API Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SilentBYOB/blacksoundfest-api

/*
Package festival holds the festival document model and the band submission
workflow.

The whole festival (info, bands, news, bracket, sponsors and anything an
admin adds) lives in ONE document. Apart from bands, its content is schemaless
JSON, represented as Object (map[string]any). Bands are typed because the
submission workflow reads and assigns their ids and emails.

# Stores

Store is implemented by:
  - badgerstore: embedded BadgerDB, the default
  - mongostore: a MongoDB collection

Both support dotted-path field replacement (SetField) and a conditional
replacement of the bands list (UpdateBands) that retries when a concurrent
writer changed the document, so two simultaneous submissions never lose an
append or hand out the same id.

# Submissions

Submitter.Submit runs these steps in order:
 1. required fields present and non-blank
 2. all three files within their ceilings (logo 2 MB, photo 3 MB, song 10 MB)
 3. email not already registered, unless it is the exempt address
 4. logo, photo and song uploaded under logos/, photos/ and songs/
 5. band appended with id max+1 and status "Maqueta recibida"

Step 3 is repeated inside the conditional update of step 5.
*/
package festival
