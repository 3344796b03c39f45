// Package discovery runs the incremental recommendation search.
//
// A Session is seeded with owned series, then each RunRound samples up to
// five seeds, asks the recommendation source for related series, filters them
// by rating, vote count, and original language, drops anything already owned
// or already surfaced, and publishes each survivor to the sink the moment it
// is found. Rounds can be repeated to load more and cancelled cooperatively:
// Stop is observed between every network call and every related item.
//
// Session state is guarded by a mutex and network calls are made without
// holding it, so acquisitions may read and update candidates while a round is
// in flight.
package discovery
