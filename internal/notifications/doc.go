// Package notifications carries events out of the discovery engine.
//
// Two surfaces live here. Sink is the push channel the engine publishes to:
// discovered candidates, sidebar status, per-show refreshes, and toasts. The
// websocket Hub implements it for browser clients and Fanout combines several
// sinks. Service is the optional ntfy integration for library milestones; it
// degrades to a no-op when no topic is configured.
package notifications
