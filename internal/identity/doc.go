// Package identity resolves a discovered series name and year to the TVDB id
// Sonarr needs for an add request.
//
// Resolver authenticates against the directory, searches by title, and
// accepts the first hit whose name is close enough to the candidate. Two
// similarity scores are computed per hit: one against "title (year)" and one
// against the ASCII-folded title. The MatchPolicy decides how they combine
// with the year check. CachingResolver wraps a Resolver with the sqlite id
// cache so repeated adds skip the directory entirely.
package identity
