// Package services defines shared utilities consumed by the HTTP clients for
// the three backing services (Sonarr, TMDB, TheTVDB).
//
// Key responsibilities:
//   - Context helpers that stamp discovery session IDs and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is regardless of which client produced them.
//   - A small JSON request helper shared by the clients so status handling and
//     decode failures are reported uniformly.
package services
