// Package idcache stores resolved TVDB series ids keyed by normalized title
// and year.
//
// A cached entry lets the acquisition path skip the TVDB login, search, and
// similarity scoring for a series it has already matched. Entries are written
// only for successful matches, so a title that failed to resolve is always
// looked up again.
//
// # Storage
//
// The cache lives in a SQLite database at <data_dir>/idcache.db, opened with
// WAL journaling. The schema is embedded and versioned; a database written by
// a different schema version is rejected with ErrSchemaMismatch and can be
// deleted safely.
//
// CLI commands for inspection and management:
//
//	sonashow cache list     # List cached mappings
//	sonashow cache clear    # Remove all entries
package idcache
