// Package tmdb implements the recommendation source on top of The Movie
// Database v3 API.
//
// Only two endpoints are used: /search/tv to find the TMDB id of an owned
// series and /tv/{id}/recommendations to fetch related series with their
// ratings, vote counts, genres, and posters. Requests are paced with a token
// bucket so a burst of discovery rounds stays inside TMDB's rate limits.
package tmdb
