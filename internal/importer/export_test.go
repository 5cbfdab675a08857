package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"award-import-engine/internal/models"
)

type fakeReader struct {
	candidates []models.Candidate
	attrs      map[int64]map[string]string
}

func (f *fakeReader) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeReader) GetAttributes(ctx context.Context, candidateID int64) (map[string]string, error) {
	return f.attrs[candidateID], nil
}

func TestExport_RendersCandidates(t *testing.T) {
	reader := &fakeReader{
		candidates: []models.Candidate{
			{ID: 1, ImportID: "101", Name: "Maria Schmidt"},
			{ID: 2, ImportID: "", Name: "Jonas Weber"},
		},
		attrs: map[int64]map[string]string{
			1: {
				models.AttrOrganisation: "Stadtwerke",
				models.AttrTop50Status:  "yes",
				models.AttrCategoryType: "Gov",
			},
			2: {
				models.AttrTop50Status: "no",
			},
		},
	}

	data, err := Export(context.Background(), reader)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

	r := csv.NewReader(bytes.NewReader(StripBOM(data)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, []string{"ID", "Import ID", "Name"}, header[:3])
	assert.Contains(t, header, "Top 50")

	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "101", records[1][1])
	assert.Equal(t, "Maria Schmidt", records[1][2])
	assert.Equal(t, "Stadtwerke", records[1][3])

	assert.Equal(t, "Jonas Weber", records[2][2])
	assert.Equal(t, "", records[2][3], "missing attributes render empty")
}

func TestExport_SanitizesFormulaCells(t *testing.T) {
	reader := &fakeReader{
		candidates: []models.Candidate{{ID: 1, Name: "=HYPERLINK(evil)"}},
		attrs: map[int64]map[string]string{
			1: {models.AttrNotes: "@payload"},
		},
	}

	data, err := Export(context.Background(), reader)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(StripBOM(data)))
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, "'=HYPERLINK(evil)", records[1][2])
	notesIdx := indexOf(records[0], "Notes")
	require.GreaterOrEqual(t, notesIdx, 0)
	assert.Equal(t, "'@payload", records[1][notesIdx])
}

func indexOf(row []string, value string) int {
	for i, v := range row {
		if v == value {
			return i
		}
	}
	return -1
}
