// Package tmdb provides the TMDB API client behind the catalog interface.
//
// It covers the three endpoints the board needs: multi search for movies and
// shows, person search, and a person's combined credits. Options allow tests
// to supply custom HTTP clients without modifying production code.
package tmdb
