package models

import (
	"io"
	"strings"
	"time"
)

// Category represents the kind of archived clipping
type Category string

// Category constants
const (
	CategoryPortrait Category = "Portrait"
	CategoryNews     Category = "News"
	CategoryBirth    Category = "Birth"
	CategoryMarriage Category = "Marriage"
	CategoryDeath    Category = "Death"
)

// Categories lists every accepted category in display order
var Categories = []Category{
	CategoryPortrait,
	CategoryNews,
	CategoryBirth,
	CategoryMarriage,
	CategoryDeath,
}

// ParseCategory matches raw against the closed category set, ignoring case.
// An empty value resolves to Portrait.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryPortrait, true
	}
	for _, c := range Categories {
		if strings.EqualFold(raw, string(c)) {
			return c, true
		}
	}
	return "", false
}

// ArchiveRecord represents an archived newspaper clipping or portrait
type ArchiveRecord struct {
	ID              int64     `json:"id"`
	Names           []string  `json:"names"`
	Category        Category  `json:"category"`
	EventDate       string    `json:"eventDate"`
	Location        string    `json:"location"`
	BirthOrigin     string    `json:"birthOrigin"`
	CountryOfOrigin string    `json:"countryOfOrigin"`
	NewspaperName   string    `json:"newspaperName"`
	PageNumber      string    `json:"pageNumber"`
	Transcription   string    `json:"transcription"`
	FamilySearchID  string    `json:"familySearchId,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	ImageRef        string    `json:"imageRef,omitempty"`
	CreatedBy       *int64    `json:"createdBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PrimaryName returns the first name of the record, used by the alphabetical index
func (r *ArchiveRecord) PrimaryName() string {
	if len(r.Names) == 0 {
		return ""
	}
	return r.Names[0]
}

// CreateRecordRequest holds the descriptive fields of a new record.
// Names is already normalized by the caller.
type CreateRecordRequest struct {
	Names           []string `json:"names"`
	Category        string   `json:"category"`
	EventDate       string   `json:"eventDate"`
	Location        string   `json:"location"`
	BirthOrigin     string   `json:"birthOrigin"`
	CountryOfOrigin string   `json:"countryOfOrigin"`
	NewspaperName   string   `json:"newspaperName"`
	PageNumber      string   `json:"pageNumber"`
	Transcription   string   `json:"transcription"`
	FamilySearchID  string   `json:"familySearchId"`
}

// UpdateRecordRequest holds a partial update of a record. Nil fields are left unchanged.
type UpdateRecordRequest struct {
	Names           []string `json:"names,omitempty"`
	Category        *string  `json:"category,omitempty"`
	EventDate       *string  `json:"eventDate,omitempty"`
	Location        *string  `json:"location,omitempty"`
	BirthOrigin     *string  `json:"birthOrigin,omitempty"`
	CountryOfOrigin *string  `json:"countryOfOrigin,omitempty"`
	NewspaperName   *string  `json:"newspaperName,omitempty"`
	PageNumber      *string  `json:"pageNumber,omitempty"`
	Transcription   *string  `json:"transcription,omitempty"`
	FamilySearchID  *string  `json:"familySearchId,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (r *UpdateRecordRequest) IsEmpty() bool {
	return r.Names == nil && r.Category == nil && r.EventDate == nil && r.Location == nil &&
		r.BirthOrigin == nil && r.CountryOfOrigin == nil && r.NewspaperName == nil &&
		r.PageNumber == nil && r.Transcription == nil && r.FamilySearchID == nil
}

// ListFilter narrows the archive listing
type ListFilter struct {
	Search   string
	Letter   string
	Category string
}

// ListResult is the archive listing with aggregate metadata
type ListResult struct {
	Items      []ArchiveRecord `json:"items"`
	TotalCount int64           `json:"totalCount"`
	LastUpdate *time.Time      `json:"lastUpdate"`
}

// ArchiveStats holds the archive-wide aggregates
type ArchiveStats struct {
	TotalCount int64
	LastUpdate *time.Time
}

// ImageUpload is an image received from a client
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// StoredImage is the image host's answer to an upload
type StoredImage struct {
	URL string `json:"url"`
	Ref string `json:"ref"`
}

// StoredNames is the raw names column of a record as persisted
type StoredNames struct {
	ID  int64
	Raw string
}
