// Package config loads, normalizes, and validates SonaShow configuration data.
//
// It supplies repository defaults, reads TOML files, loads a .env file, and
// lets environment variables override file values (using the same lower_snake
// names older deployments already export, e.g. sonarr_address, tmdb_api_key).
// The Config type centralizes every knob the discovery engine, identity
// resolver, and web surface read. Save persists settings edited at runtime.
package config
