// Package language maps the ISO 639 codes TMDB reports as a series' original
// language to display names, and normalizes the configured language filter.
package language
