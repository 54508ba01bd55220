// Package api serves the board over HTTP for browser front ends. It
// translates session and search state into transport-friendly DTOs and
// exposes the gestures a web board needs: drag, drop, edit-mode clicks,
// debounced search, import, export and clear.
//
// # Key Types
//
// Server: chi router plus listener lifecycle. Mount it directly as an
// http.Handler in tests, or call Start to listen on the configured bind.
//
// Board/Collection/Card: render-ready board with resolved poster URLs.
//
// SearchResults/SearchCandidate: the current result list of the search box.
//
// # Live Updates
//
// Board changes, notices and search results are pushed to websocket clients
// on /api/ws through the events hub, so pages do not poll. GET /api/notices
// drains the same notices for clients that prefer polling.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Errors are {"error": "..."} with a status
// derived from the package sentinel errors (not found 404, conflicting
// gesture 409, unplaceable item 422, invalid input 400).
package api
