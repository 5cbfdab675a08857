package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"award-import-engine/internal/models"
)

// CandidateReader is the read side of the store needed for exports.
type CandidateReader interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	GetAttributes(ctx context.Context, candidateID int64) (map[string]string, error)
}

var exportColumns = []struct {
	header string
	attr   string
}{
	{"Organisation", models.AttrOrganisation},
	{"Position", models.AttrPosition},
	{"LinkedIn", models.AttrLinkedInURL},
	{"Website", models.AttrWebsiteURL},
	{"Article", models.AttrArticleURL},
	{"Description", models.AttrDescription},
	{"Category", models.AttrCategoryType},
	{"Top 50", models.AttrTop50Status},
	{"Email", models.AttrEmail},
	{"Nominator", models.AttrNominator},
	{"Notes", models.AttrNotes},
}

// Export renders all stored candidates as a CSV document. The layout mirrors
// the import template so an exported file can be re-imported unchanged.
// Cells are run through the same formula guard as imports so the file is safe
// to open in a spreadsheet.
func Export(ctx context.Context, store CandidateReader) ([]byte, error) {
	candidates, err := store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})
	w := csv.NewWriter(&buf)

	header := []string{"ID", "Import ID", "Name"}
	for _, col := range exportColumns {
		header = append(header, col.header)
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, c := range candidates {
		attrs, err := store.GetAttributes(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("reading attributes for candidate %d: %w", c.ID, err)
		}

		row := []string{
			strconv.FormatInt(c.ID, 10),
			SanitizeCell(c.ImportID),
			SanitizeCell(c.Name),
		}
		for _, col := range exportColumns {
			row = append(row, SanitizeCell(attrs[col.attr]))
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
