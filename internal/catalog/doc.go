// Package catalog holds the in-memory index of owned series.
//
// The index answers "is this title already in the library?" for discovery
// dedup and keeps the display list shown in the library sidebar. Membership
// is tested on a normalized key (ASCII, lower case, no punctuation, no year
// suffix) while display names are preserved as fetched. One Index is shared
// by every discovery session and acquisition for the life of the process.
package catalog
