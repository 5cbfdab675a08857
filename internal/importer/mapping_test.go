package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapHeaders_EnglishAndGerman(t *testing.T) {
	headers := []string{"ID", "Name", "Firma", "Position", "LinkedIn-Link", "Webseite", "Kategorie", "Top 50"}
	m := MapHeaders(headers, DefaultSynonymTable())

	wantColumns := map[string]int{
		FieldImportID:     0,
		FieldName:         1,
		FieldOrganisation: 2,
		FieldPosition:     3,
		FieldLinkedIn:     4,
		FieldWebsite:      5,
		FieldCategory:     6,
		FieldStatus:       7,
	}

	for field, want := range wantColumns {
		got, ok := m.Column(field)
		require.True(t, ok, "field %s not mapped", field)
		assert.Equal(t, want, got, "field %s", field)
	}
	assert.Empty(t, m.Warnings)
}

func TestMapHeaders_CaseInsensitive(t *testing.T) {
	m := MapHeaders([]string{"NAME", "E-Mail"}, DefaultSynonymTable())
	assert.True(t, m.Has(FieldName))
	assert.True(t, m.Has(FieldEmail))
}

func TestMapHeaders_SubstringMatch(t *testing.T) {
	m := MapHeaders([]string{"Name", "LinkedIn Profil des Kandidaten"}, DefaultSynonymTable())
	idx, ok := m.Column(FieldLinkedIn)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestMapHeaders_ArticleContains(t *testing.T) {
	m := MapHeaders([]string{"Name", "Article about the candidate"}, DefaultSynonymTable())
	idx, ok := m.Column(FieldArticle)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestMapHeaders_UnknownHeadersIgnored(t *testing.T) {
	m := MapHeaders([]string{"Name", "Shoe Size", "Favourite Colour"}, DefaultSynonymTable())
	assert.True(t, m.Has(FieldName))
	assert.Len(t, m.Fields(DefaultSynonymTable()), 1)
	assert.Empty(t, m.Warnings)
}

func TestMapHeaders_DuplicateKeepsFirstAndWarns(t *testing.T) {
	m := MapHeaders([]string{"Name", "Kandidat"}, DefaultSynonymTable())

	idx, ok := m.Column(FieldName)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "Name")
	assert.Contains(t, m.Warnings[0], "Kandidat")
	assert.Contains(t, m.Warnings[0], "keeping the first")
}

func TestMapHeaders_WhitespaceAndBOM(t *testing.T) {
	m := MapHeaders([]string{"\xEF\xBB\xBF  Name  ", "E-Mail-Adresse"}, DefaultSynonymTable())
	assert.True(t, m.Has(FieldName))
	assert.True(t, m.Has(FieldEmail))
}

func TestMapHeaders_FieldsInTableOrder(t *testing.T) {
	// Columns deliberately out of canonical order.
	m := MapHeaders([]string{"Email", "Name", "ID"}, DefaultSynonymTable())
	assert.Equal(t, []string{FieldImportID, FieldName, FieldEmail}, m.Fields(DefaultSynonymTable()))
}

func TestMapHeaders_EmptyHeaderCellsIgnored(t *testing.T) {
	m := MapHeaders([]string{"Name", "", "  "}, DefaultSynonymTable())
	assert.Len(t, m.Fields(DefaultSynonymTable()), 1)
}
