package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// dateLayout is the calendar date format the catalog transmits.
const dateLayout = "2006-01-02"

// Date is a calendar date as the catalog transmits it (e.g., "2024-11-08").
type Date struct {
	time.Time
}

// UnmarshalJSON parses a quoted calendar date. Null and empty values yield the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		d.Time = time.Time{}

		return nil
	}

	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return fmt.Errorf("failed to parse date: %w", err)
	}

	d.Time = parsed

	return nil
}

// MarshalJSON renders the date in the catalog's wire format.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}

	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// Artist represents a performing artist.
type Artist struct {
	// ID is the unique artist identifier.
	ID int64 `json:"id"`
	// Name is the artist's display name.
	Name string `json:"name"`
}

// TrackSummary represents a track as listed inside an album or in search results.
type TrackSummary struct {
	// ID is the unique track identifier.
	ID int64 `json:"id"`
	// Title is the track name.
	Title string `json:"title"`
	// Duration is the track length in seconds.
	Duration int64 `json:"duration"`
	// TrackNumber is the track's position on its disc.
	TrackNumber int64 `json:"track_number"`
	// VolumeNumber is the disc the track belongs to, starting at 1.
	VolumeNumber int64 `json:"volume_number"`
	// Artists lists the performing artists.
	Artists []Artist `json:"artists"`
}

// Album represents full album metadata including its ordered track list.
type Album struct {
	// ID is the unique album identifier.
	ID int64 `json:"id"`
	// Title is the album name.
	Title string `json:"title"`
	// ReleaseDate is the album's release date.
	ReleaseDate Date `json:"release_date"`
	// Artist is the album's primary artist.
	Artist Artist `json:"artist"`
	// Artists lists all artists credited on the album.
	Artists []Artist `json:"artists"`
	// Tracks is the ordered track list.
	Tracks []TrackSummary `json:"tracks"`
	// Cover identifies the album cover in the image store.
	Cover uuid.UUID `json:"cover"`
}

// AlbumSummary represents an album search hit.
type AlbumSummary struct {
	// ID is the unique album identifier.
	ID int64 `json:"id"`
	// Title is the album name.
	Title string `json:"title"`
	// ReleaseDate is the album's release date.
	ReleaseDate Date `json:"release_date"`
	// Artists lists all artists credited on the album.
	Artists []Artist `json:"artists"`
	// Cover identifies the album cover in the image store.
	Cover uuid.UUID `json:"cover"`
}

// TrackManifest describes how a track's audio is delivered.
type TrackManifest struct {
	// TrackID is the unique track identifier.
	TrackID int64 `json:"trackId"`
	// ManifestMimeType declares the manifest format.
	ManifestMimeType string `json:"manifestMimeType"`
	// Manifest is the base64-encoded manifest payload.
	Manifest string `json:"manifest"`
}

// envelope is the {"data": ...} wrapper every catalog endpoint responds with.
type envelope[T any] struct {
	// Data is the actual payload.
	Data T `json:"data"`
}

// searchResults is the payload shape of the search endpoint.
type searchResults[T any] struct {
	// Items is the list of search hits.
	Items []T `json:"items"`
}

// FetchJSONResult wraps a decoded JSON payload together with the HTTP status code.
type FetchJSONResult[T any] struct {
	// Data is the decoded payload, nil when the request failed.
	Data *T
	// StatusCode is the HTTP status code of the response.
	StatusCode int
}
