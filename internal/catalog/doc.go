// Package catalog defines the boundary to the remote media catalog.
//
// Records arrive in the loose shape the provider returns for search, person
// and credit endpoints. Nothing past the media normalizer inspects them.
package catalog
