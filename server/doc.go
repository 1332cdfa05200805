// Package server exposes the matching engine over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness probe
//	GET  /metrics             Prometheus scrape endpoint
//	GET  /api/attendees       list attendee names
//	POST /api/match/name      identity lookup, body {"name": "..."}
//	POST /api/match/request   free-text request, body {"text": "..."}
//	POST /api/match/offering  free-text offering, body {"text": "..."}
//
// Responses are the JSON shapes produced by the match package. Domain
// errors map to 404 (unknown attendee) and 400 (empty query); everything
// else is a 500 with a generic body.
package server
