// Package tvdb implements the identity directory on top of TheTVDB v4 API.
//
// Sonarr keys series by TVDB id, so every acquisition first logs in with the
// project API key and searches TVDB for the candidate title. Bearer tokens are
// JWTs; the client reads their exp claim (without verifying the signature) and
// reuses a token until shortly before it expires.
package tvdb
