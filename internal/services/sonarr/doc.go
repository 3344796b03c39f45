// Package sonarr is the library catalog client for the Sonarr v3 API.
//
// It lists the series already in the library and submits add requests. An
// add is reported as created on HTTP 201; any other status is a rejection
// whose first errorMessage is surfaced so callers can classify it.
package sonarr
