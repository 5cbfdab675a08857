// Package importer implements the candidate CSV import pipeline: dialect
// detection, header mapping, row normalization and reconciliation against
// the candidate store.
package importer

import (
	"strings"
)

// Canonical field names all header synonyms are normalized to.
const (
	FieldImportID     = "import_id"
	FieldName         = "name"
	FieldOrganisation = "organisation"
	FieldPosition     = "position"
	FieldLinkedIn     = "linkedin"
	FieldWebsite      = "website"
	FieldArticle      = "article"
	FieldDescription  = "description"
	FieldCategory     = "category"
	FieldStatus       = "status"
	FieldEmail        = "email"
	FieldNominator    = "nominator"
	FieldNotes        = "notes"
	FieldPhoto        = "photo"
)

// FieldSpec associates one canonical field with its accepted header
// spellings. Exact spellings are compared whole, Contains spellings as
// substrings; both case-insensitively.
type FieldSpec struct {
	Canonical string
	Header    string // preferred spelling, used for templates and exports
	Exact     []string
	Contains  []string
}

// SynonymTable is the ordered list of recognized fields. Order matters:
// the first spec that matches a column claims it.
type SynonymTable []FieldSpec

// DefaultSynonymTable returns the built-in English/German header synonyms.
func DefaultSynonymTable() SynonymTable {
	return SynonymTable{
		{
			Canonical: FieldImportID,
			Header:    "ID",
			Exact:     []string{"id", "nummer", "import id", "import_id", "candidate id", "kandidaten-id"},
		},
		{
			Canonical: FieldName,
			Header:    "Name",
			Exact:     []string{"name", "candidate name", "full name", "display name", "kandidat", "name des kandidaten"},
		},
		{
			Canonical: FieldOrganisation,
			Header:    "Organisation",
			Exact:     []string{"organisation", "organization", "company", "firma", "unternehmen"},
		},
		{
			Canonical: FieldPosition,
			Header:    "Position",
			Exact:     []string{"position", "job title", "rolle", "title"},
		},
		{
			Canonical: FieldLinkedIn,
			Header:    "LinkedIn-Link",
			Exact:     []string{"linkedin", "linkedin-link", "linkedin url", "linkedin profile"},
			Contains:  []string{"linkedin"},
		},
		{
			Canonical: FieldWebsite,
			Header:    "Webseite",
			Exact:     []string{"website", "webseite", "web", "website url", "homepage"},
		},
		{
			Canonical: FieldArticle,
			Header:    "Article",
			Exact:     []string{"article", "artikel"},
			Contains:  []string{"article about", "artikel"},
		},
		{
			Canonical: FieldDescription,
			Header:    "Description",
			Exact:     []string{"description", "beschreibung", "overview", "überblick", "bio", "biography"},
		},
		{
			Canonical: FieldCategory,
			Header:    "Category",
			Exact:     []string{"category", "kategorie", "award category"},
		},
		{
			Canonical: FieldStatus,
			Header:    "Status",
			Exact:     []string{"status", "top 50", "top50"},
		},
		{
			Canonical: FieldEmail,
			Header:    "Email",
			Exact:     []string{"email", "e-mail", "email address", "e-mail-adresse", "mail"},
		},
		{
			Canonical: FieldNominator,
			Header:    "Nominator",
			Exact:     []string{"nominator", "nominated by", "vorgeschlagen von"},
		},
		{
			Canonical: FieldNotes,
			Header:    "Notes",
			Exact:     []string{"notes", "notizen", "anmerkungen", "comments", "kommentare"},
		},
		{
			Canonical: FieldPhoto,
			Header:    "Photo",
			Exact:     []string{"photo", "foto", "photo url", "foto url", "bild"},
		},
	}
}

// FieldMapping maps canonical field names to their column index in the
// header row. Each canonical field maps to at most one column.
type FieldMapping struct {
	columns map[string]int
	// Warnings lists duplicate-header collisions found while scanning.
	Warnings []string
}

// Column returns the column index for a canonical field.
func (m *FieldMapping) Column(canonical string) (int, bool) {
	idx, ok := m.columns[canonical]
	return idx, ok
}

// Has reports whether a canonical field was mapped.
func (m *FieldMapping) Has(canonical string) bool {
	_, ok := m.columns[canonical]
	return ok
}

// Fields returns the mapped canonical field names in table order.
func (m *FieldMapping) Fields(table SynonymTable) []string {
	var fields []string
	for _, spec := range table {
		if m.Has(spec.Canonical) {
			fields = append(fields, spec.Canonical)
		}
	}
	return fields
}

// MapHeaders builds a FieldMapping from a header row. Columns are scanned
// left to right; the first spec matching a column claims it. A later column
// matching an already-claimed field is ignored, but recorded as a warning
// since it silently drops that column's data.
func MapHeaders(headers []string, table SynonymTable) *FieldMapping {
	mapping := &FieldMapping{columns: make(map[string]int)}

	for idx, header := range headers {
		normalized := normalizeHeader(header)
		if normalized == "" {
			continue
		}

		spec, ok := matchHeader(normalized, table)
		if !ok {
			// Unrecognized headers are ignored, not errors.
			continue
		}

		if prev, claimed := mapping.columns[spec.Canonical]; claimed {
			mapping.Warnings = append(mapping.Warnings,
				"Both \""+headers[prev]+"\" and \""+headers[idx]+"\" match field "+
					spec.Canonical+"; keeping the first, data in the second column is ignored")
			continue
		}

		mapping.columns[spec.Canonical] = idx
	}

	return mapping
}

// matchHeader finds the first spec in table order that accepts the header.
func matchHeader(normalized string, table SynonymTable) (FieldSpec, bool) {
	for _, spec := range table {
		for _, exact := range spec.Exact {
			if normalized == exact {
				return spec, true
			}
		}
		for _, sub := range spec.Contains {
			if strings.Contains(normalized, sub) {
				return spec, true
			}
		}
	}
	return FieldSpec{}, false
}

// normalizeHeader lowercases, strips a UTF-8 BOM and collapses whitespace
// runs to single spaces.
func normalizeHeader(header string) string {
	header = strings.TrimPrefix(header, "\xEF\xBB\xBF")
	header = strings.ToLower(strings.TrimSpace(header))
	return strings.Join(strings.Fields(header), " ")
}
