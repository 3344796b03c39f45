// Package daemon wires SonaShow's collaborators together and owns the
// process lifecycle.
//
// New builds the shared catalog index, the websocket hub, and the upstream
// API clients. Start takes the single-instance lock, opens the id cache,
// constructs the discovery session, acquisition coordinator, and web
// controller, then begins serving. Settings edited from the web client
// rebuild the upstream clients in place so running sessions pick up new
// credentials without a restart.
package daemon
