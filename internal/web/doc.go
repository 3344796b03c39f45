// Package web exposes the discovery engine over HTTP and a websocket push
// channel.
//
// Browser clients connect to /ws and exchange {"event", "data"} frames. The
// inbound event names (start_req, load_more_shows, adder, ...) trigger the
// same Controller methods as the JSON routes under /api, so scripts and the
// browser share one code path. Outbound events are broadcast to every
// connected client through notifications.Hub.
package web
