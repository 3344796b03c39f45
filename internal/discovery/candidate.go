package discovery

import (
	"encoding/json"
	"strconv"
	"strings"

	"sonashow/internal/language"
	"sonashow/internal/services/tmdb"
)

const (
	posterBaseURL = "https://image.tmdb.org/t/p/original/"
	// PlaceholderImage stands in for series without a poster.
	PlaceholderImage = "https://via.placeholder.com/300x200"
	// UnknownYear is used when TMDB has no first air date.
	UnknownYear = "0000"
)

// Status is the acquisition outcome recorded on a candidate.
type Status string

const (
	StatusPending           Status = ""
	StatusAdded             Status = "Added"
	StatusAlreadyOwned      Status = "Already in Sonarr"
	StatusInvalidPath       Status = "Invalid Path"
	StatusInvalidIdentifier Status = "Invalid Series ID"
	StatusFailed            Status = "Failed to Add"
)

// Candidate is a discovered series not yet in the library. It is created by
// a round and afterwards only its Status changes.
type Candidate struct {
	Name       string
	Year       string
	Genres     []string
	Status     Status
	ImageURL   string
	Votes      int
	Rating     float64
	Overview   string
	Language   string
	Popularity float64
	SourceSeed string
}

// candidateWire is the JSON shape the web client renders.
type candidateWire struct {
	Name       string  `json:"Name"`
	Year       string  `json:"Year"`
	Genre      string  `json:"Genre"`
	Status     Status  `json:"Status"`
	ImgLink    string  `json:"Img_Link"`
	Votes      string  `json:"Votes"`
	Rating     string  `json:"Rating"`
	Overview   string  `json:"Overview"`
	Language   string  `json:"Language"`
	Popularity float64 `json:"Popularity"`
	BaseShow   string  `json:"Base_Show"`
}

// MarshalJSON renders the candidate for the push channel.
func (c Candidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(candidateWire{
		Name:       c.Name,
		Year:       c.Year,
		Genre:      strings.Join(c.Genres, ", "),
		Status:     c.Status,
		ImgLink:    c.ImageURL,
		Votes:      "Votes: " + strconv.Itoa(c.Votes),
		Rating:     "Rating: " + strconv.FormatFloat(c.Rating, 'f', -1, 64),
		Overview:   c.Overview,
		Language:   c.Language,
		Popularity: c.Popularity,
		BaseShow:   c.SourceSeed,
	})
}

func (c Candidate) clone() Candidate {
	c.Genres = append([]string(nil), c.Genres...)
	return c
}

// newCandidate builds a candidate from a TMDB recommendation.
func newCandidate(show tmdb.Show, seed string) Candidate {
	return Candidate{
		Name:       show.Name,
		Year:       airYear(show.FirstAirDate),
		Genres:     GenreNames(show.GenreIDs),
		Status:     StatusPending,
		ImageURL:   posterURL(show.PosterPath),
		Votes:      show.VoteCount,
		Rating:     show.VoteAverage,
		Overview:   show.Overview,
		Language:   language.DisplayName(originalLanguage(show)),
		Popularity: show.Popularity,
		SourceSeed: seed,
	}
}

func airYear(firstAirDate string) string {
	year, _, _ := strings.Cut(strings.TrimSpace(firstAirDate), "-")
	if year == "" {
		return UnknownYear
	}
	return year
}

func posterURL(path string) string {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return PlaceholderImage
	}
	return posterBaseURL + path
}

// originalLanguage treats a missing language as English.
func originalLanguage(show tmdb.Show) string {
	if code := strings.TrimSpace(show.OriginalLanguage); code != "" {
		return strings.ToLower(code)
	}
	return "en"
}
