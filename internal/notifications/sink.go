package notifications

import "sync"

// Push channel event names understood by the web client.
const (
	EventMoreShowsLoaded = "more_shows_loaded"
	EventSidebarUpdate   = "sonarr_sidebar_update"
	EventRefreshShow     = "refresh_show"
	EventToast           = "new_toast_msg"
	EventClear           = "clear"
	EventSettingsLoaded  = "settingsLoaded"
)

// Sink is a fire-and-forget event publisher. Implementations must not block
// the caller on slow consumers and never report delivery failures.
type Sink interface {
	Publish(event string, payload any)
}

// Toast is the payload of EventToast.
type Toast struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// SidebarUpdate is the payload of EventSidebarUpdate.
type SidebarUpdate struct {
	Status  string `json:"Status"`
	Code    any    `json:"Code"`
	Data    any    `json:"Data"`
	Running bool   `json:"Running"`
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event string, payload any)

// Publish calls f.
func (f SinkFunc) Publish(event string, payload any) { f(event, payload) }

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(string, any) {}

// Fanout publishes each event to every non-nil sink in order.
type Fanout []Sink

// Publish forwards the event to every sink.
func (f Fanout) Publish(event string, payload any) {
	for _, sink := range f {
		if sink != nil {
			sink.Publish(event, payload)
		}
	}
}

// Message is one recorded event.
type Message struct {
	Event   string
	Payload any
}

// Recorder keeps every published event in memory. It backs the CLI's
// one-shot commands and tests.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Publish records the event.
func (r *Recorder) Publish(event string, payload any) {
	r.mu.Lock()
	r.messages = append(r.messages, Message{Event: event, Payload: payload})
	r.mu.Unlock()
}

// Messages returns a copy of the recorded events.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Events returns the recorded events with the given name.
func (r *Recorder) Events(event string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, msg := range r.messages {
		if msg.Event == event {
			out = append(out, msg)
		}
	}
	return out
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}
