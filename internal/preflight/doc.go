// Package preflight provides readiness checks for the filesystem paths and
// the catalog service that mediaranker depends on.
//
// The CLI "mediaranker status" command runs RunAll and renders the results.
// Board commands work without a catalog key, so a missing key is reported
// rather than treated as fatal.
package preflight
