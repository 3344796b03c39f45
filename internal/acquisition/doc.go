// Package acquisition adds an accepted candidate to Sonarr.
//
// Coordinator resolves the candidate's TVDB id, submits the add request,
// classifies Sonarr's answer into a candidate status, and reports the result
// back through the session and the push channel. Every call is synchronous;
// the web layer runs each acquisition on its own goroutine.
package acquisition
