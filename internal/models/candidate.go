// Package models defines the data structures for the award import engine.
package models

import (
	"time"
)

// TopStatus represents the normalized Top-50 status of a candidate.
type TopStatus string

const (
	TopStatusYes TopStatus = "yes"
	TopStatusNo  TopStatus = "no"
)

// Candidate represents a stored candidate record.
type Candidate struct {
	ID        int64     `json:"id" db:"id"`
	ImportID  string    `json:"import_id,omitempty" db:"import_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ImportRow is one normalized CSV data line. Each canonical column has a
// named field; values are already trimmed, encoding-repaired and sanitized.
type ImportRow struct {
	RowNumber    int       `json:"row_number"`
	ImportID     string    `json:"import_id"`
	Name         string    `json:"name"`
	Organisation string    `json:"organisation"`
	Position     string    `json:"position"`
	LinkedIn     string    `json:"linkedin"`
	Website      string    `json:"website"`
	Article      string    `json:"article"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Status       TopStatus `json:"status"`
	Email        string    `json:"email"`
	Nominator    string    `json:"nominator"`
	Notes        string    `json:"notes"`
	Photo        string    `json:"photo"`
}

// Attribute keys under which row fields are persisted.
const (
	AttrImportID     = "import_id"
	AttrName         = "name"
	AttrOrganisation = "organisation"
	AttrPosition     = "position"
	AttrLinkedInURL  = "linkedin_url"
	AttrWebsiteURL   = "website_url"
	AttrArticleURL   = "article_url"
	AttrDescription  = "description_full"
	AttrCategoryType = "category_type"
	AttrTop50Status  = "top_50_status"
	AttrEmail        = "email"
	AttrNominator    = "nominator"
	AttrNotes        = "notes"
	AttrPhotoKey     = "photo_attachment_key"
)

// Attributes returns the named attributes a row persists, keyed by attribute
// name. Empty URL fields are included so an update can clear a previously
// stored invalid value.
func (r *ImportRow) Attributes() map[string]string {
	return map[string]string{
		AttrImportID:     r.ImportID,
		AttrName:         r.Name,
		AttrOrganisation: r.Organisation,
		AttrPosition:     r.Position,
		AttrLinkedInURL:  r.LinkedIn,
		AttrWebsiteURL:   r.Website,
		AttrArticleURL:   r.Article,
		AttrDescription:  r.Description,
		AttrCategoryType: r.Category,
		AttrTop50Status:  string(r.Status),
		AttrEmail:        r.Email,
		AttrNominator:    r.Nominator,
		AttrNotes:        r.Notes,
	}
}

// IsEmpty reports whether every field of the row is blank.
func (r *ImportRow) IsEmpty() bool {
	return r.ImportID == "" && r.Name == "" && r.Organisation == "" &&
		r.Position == "" && r.LinkedIn == "" && r.Website == "" &&
		r.Article == "" && r.Description == "" && r.Category == "" &&
		r.Email == "" && r.Nominator == "" && r.Notes == "" && r.Photo == ""
}

// CriteriaKey identifies one of the six evaluation criteria extracted from a
// candidate description.
type CriteriaKey string

const (
	CriteriaCourage        CriteriaKey = "evaluation_courage"
	CriteriaInnovation     CriteriaKey = "evaluation_innovation"
	CriteriaImplementation CriteriaKey = "evaluation_implementation"
	CriteriaRelevance      CriteriaKey = "evaluation_relevance"
	CriteriaVisibility     CriteriaKey = "evaluation_visibility"
	CriteriaPersonality    CriteriaKey = "evaluation_personality"
)

// CriteriaKeys returns all criteria keys in label order.
func CriteriaKeys() []CriteriaKey {
	return []CriteriaKey{
		CriteriaCourage,
		CriteriaInnovation,
		CriteriaImplementation,
		CriteriaRelevance,
		CriteriaVisibility,
		CriteriaPersonality,
	}
}
