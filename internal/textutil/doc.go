// Package textutil provides the title handling shared by the catalog index,
// discovery dedup, and identity matching.
//
// The primary use cases are:
//   - Transliterating titles to ASCII and stripping " (YYYY)" suffixes
//   - Building normalized dedup keys for owned-title membership tests
//   - Deriving Sonarr title slugs and folder names
//   - Scoring title similarity as an integer percentage
//
// Similarity uses a Levenshtein ratio so identical strings always score 100.
package textutil
