// Package preflight provides readiness checks for the upstream services and
// filesystem paths SonaShow depends on.
//
// The CLI "sonashow check" command runs RunAll and renders one row per check.
// Checks for services without credentials report the missing key instead of
// making a request.
package preflight
