package importer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"award-import-engine/internal/models"
	"award-import-engine/internal/utils"
)

// CandidateStore is the entity-storage boundary the reconciler writes
// through. Implemented by the Postgres repositories; tests use an in-memory
// fake.
type CandidateStore interface {
	FindByImportID(ctx context.Context, importID string) (*models.Candidate, error)
	FindByName(ctx context.Context, name string) (*models.Candidate, error)
	Create(ctx context.Context, importID, name string) (int64, error)
	Update(ctx context.Context, id int64, importID, name string) error
	SetAttribute(ctx context.Context, candidateID int64, key, value string) error
}

// CategoryStore resolves and associates category terms.
type CategoryStore interface {
	ResolveOrCreate(ctx context.Context, name string) (int64, error)
	Associate(ctx context.Context, candidateID, categoryID int64) error
}

// PhotoAttacher attaches candidate photos, either from an already-uploaded
// asset matched by candidate name or by fetching a URL. Both return the
// stored asset key.
type PhotoAttacher interface {
	AttachByName(ctx context.Context, candidateID int64, candidateName string) (string, error)
	AttachFromURL(ctx context.Context, candidateID int64, photoURL string) (string, error)
}

// Progress reports coarse chunk-level progress for polling UIs.
type Progress struct {
	CurrentBatch int    `json:"current_batch"`
	TotalBatches int    `json:"total_batches"`
	Percentage   int    `json:"percentage"`
	Message      string `json:"message"`
}

// ProgressFunc receives progress updates. May be nil.
type ProgressFunc func(Progress)

// Options control one import run.
type Options struct {
	UpdateExisting bool
	DryRun         bool
	ImportPhotos   bool
	BatchSize      int
	MaxFileBytes   int64
	Progress       ProgressFunc
}

// DefaultBatchSize is the chunk size used when Options.BatchSize is zero.
// Chunking only bounds execution bursts and feeds progress reporting; rows
// are processed strictly in file order regardless.
const DefaultBatchSize = 50

// DefaultMaxFileBytes is the file size ceiling (10 MB).
const DefaultMaxFileBytes = 10 * 1024 * 1024

// Importer runs the candidate CSV import pipeline.
type Importer struct {
	table      SynonymTable
	candidates CandidateStore
	categories CategoryStore
	photos     PhotoAttacher
}

// New creates an Importer. The synonym table is fixed per importer; photos
// may be nil to disable photo attachment entirely.
func New(table SynonymTable, candidates CandidateStore, categories CategoryStore, photos PhotoAttacher) *Importer {
	if table == nil {
		table = DefaultSynonymTable()
	}
	return &Importer{
		table:      table,
		candidates: candidates,
		categories: categories,
		photos:     photos,
	}
}

// ImportFile reads a CSV file from disk and imports it.
// File-level problems (missing, unreadable, oversized) are run-fatal and
// reported through the result's message log before any row is processed.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) *models.ImportResult {
	result := &models.ImportResult{}

	info, err := os.Stat(path)
	if err != nil {
		result.AddMessage("File not found or not readable: %v", err)
		return result
	}

	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	if info.Size() > maxBytes {
		result.AddMessage("%v: maximum is %d bytes, file is %d bytes",
			models.ErrFileTooLarge, maxBytes, info.Size())
		return result
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.AddMessage("Could not open file: %v", err)
		return result
	}

	return im.Import(ctx, content, opts)
}

// Import runs the pipeline over raw CSV content. Dialect detection and
// header discovery failures are run-fatal; row-level failures are counted
// and recorded while processing continues.
func (im *Importer) Import(ctx context.Context, content []byte, opts Options) *models.ImportResult {
	logger := utils.GetLogger()
	result := &models.ImportResult{}

	if len(StripBOM(content)) == 0 {
		result.AddMessage("%v", models.ErrEmptyFile)
		return result
	}

	delim := DetectDelimiter(content)
	result.AddMessage("Detected delimiter: %s", delimiterName(delim))

	records, err := ParseRecords(content, delim)
	if err != nil {
		result.AddMessage("Could not parse file: %v", err)
		return result
	}

	headerIdx, headers, err := FindHeaderRow(records)
	if err != nil {
		result.AddMessage("%v. Ensure the file has a header row with columns like \"ID\" or \"Name\".", err)
		return result
	}

	mapping := MapHeaders(headers, im.table)
	for _, warning := range mapping.Warnings {
		logger.Warn("duplicate header", utils.String("detail", warning))
		result.AddMessage("Warning: %s", warning)
	}

	if !mapping.Has(FieldName) {
		result.AddMessage("%v. Available headers: %s",
			models.ErrNameColumnUnmapped, strings.Join(headers, ", "))
		return result
	}

	result.AddMessage("Mapped fields: %s", strings.Join(mapping.Fields(im.table), ", "))

	im.processRows(ctx, records, headerIdx, mapping, opts, result)
	result.Finalize()

	logger.Info("import completed",
		utils.Int("created", result.Created),
		utils.Int("updated", result.Updated),
		utils.Int("skipped", result.Skipped),
		utils.Int("errors", result.Errors))

	return result
}

// processRows drives the per-row pipeline in fixed-size chunks. Chunking has
// no effect on ordering; it exists for progress reporting and to bound work
// between cancellation checks.
func (im *Importer) processRows(ctx context.Context, records [][]string, headerIdx int, mapping *FieldMapping, opts Options, result *models.ImportResult) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	headerLen := len(records[headerIdx])
	data := records[headerIdx+1:]

	// Row numbers are 1-based physical record positions, matching what an
	// operator sees in a spreadsheet.
	type numbered struct {
		record []string
		number int
	}
	var rows []numbered
	for i, record := range data {
		if rowIsBlank(record) {
			continue
		}
		rows = append(rows, numbered{record: record, number: headerIdx + 2 + i})
	}

	totalBatches := (len(rows) + batchSize - 1) / batchSize

	for b := 0; b*batchSize < len(rows); b++ {
		if opts.Progress != nil {
			opts.Progress(Progress{
				CurrentBatch: b + 1,
				TotalBatches: totalBatches,
				Percentage:   (b + 1) * 100 / totalBatches,
				Message:      fmt.Sprintf("Processing batch %d of %d...", b+1, totalBatches),
			})
		}

		end := (b + 1) * batchSize
		if end > len(rows) {
			end = len(rows)
		}

		for _, row := range rows[b*batchSize : end] {
			if ctx.Err() != nil {
				result.AddMessage("Import aborted by user")
				return
			}

			if len(row.record) != headerLen {
				result.AddRowError(row.number, "", fmt.Errorf(
					"%w: header has %d columns, row has %d",
					models.ErrColumnCountMismatch, headerLen, len(row.record)))
				continue
			}

			normalized := NormalizeRow(row.record, mapping, row.number)
			im.importRow(ctx, &normalized, opts, result)
		}
	}
}

// importRow reconciles one normalized row against the store: create, update
// or skip per the update policy, then persist attributes, category and
// criteria. Storage failures are row errors; processing continues.
func (im *Importer) importRow(ctx context.Context, row *models.ImportRow, opts Options, result *models.ImportResult) {
	if row.Name == "" {
		result.AddRowError(row.RowNumber, "", models.ErrMissingName)
		return
	}

	existing, err := im.findExisting(ctx, row)
	if err != nil {
		result.AddRowError(row.RowNumber, row.Name, fmt.Errorf("lookup failed: %w", err))
		return
	}

	if existing != nil && !opts.UpdateExisting {
		result.Skipped++
		return
	}

	if opts.DryRun {
		if existing != nil {
			result.Updated++
			result.AddMessage("Row %d (%s): would update existing", row.RowNumber, row.Name)
		} else {
			result.Created++
			result.AddMessage("Row %d (%s): would create new", row.RowNumber, row.Name)
		}
		return
	}

	var candidateID int64
	if existing != nil {
		if err := im.candidates.Update(ctx, existing.ID, row.ImportID, row.Name); err != nil {
			result.AddRowError(row.RowNumber, row.Name, err)
			return
		}
		candidateID = existing.ID
		result.Updated++
	} else {
		id, err := im.candidates.Create(ctx, row.ImportID, row.Name)
		if err != nil {
			result.AddRowError(row.RowNumber, row.Name, err)
			return
		}
		candidateID = id
		result.Created++
	}

	im.persistAttributes(ctx, candidateID, row, result)

	if row.Category != "" {
		im.associateCategory(ctx, candidateID, row, result)
	}

	if row.Description != "" {
		im.persistCriteria(ctx, candidateID, row, result)
	}

	if opts.ImportPhotos && im.photos != nil && row.Photo != "" {
		im.attachPhoto(ctx, candidateID, row, result)
	}
}

// findExisting looks up a candidate by import ID first, then by exact name.
// First hit wins; there is no fuzzy matching.
func (im *Importer) findExisting(ctx context.Context, row *models.ImportRow) (*models.Candidate, error) {
	if row.ImportID != "" {
		existing, err := im.candidates.FindByImportID(ctx, row.ImportID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return im.candidates.FindByName(ctx, row.Name)
}

// persistAttributes writes every mapped field as a named attribute.
func (im *Importer) persistAttributes(ctx context.Context, candidateID int64, row *models.ImportRow, result *models.ImportResult) {
	for key, value := range row.Attributes() {
		if err := im.candidates.SetAttribute(ctx, candidateID, key, value); err != nil {
			result.AddMessage("Row %d (%s): failed to store %s: %v", row.RowNumber, row.Name, key, err)
		}
	}
}

// associateCategory resolves (creating if needed) the category term and
// associates it with the candidate.
func (im *Importer) associateCategory(ctx context.Context, candidateID int64, row *models.ImportRow, result *models.ImportResult) {
	categoryID, err := im.categories.ResolveOrCreate(ctx, row.Category)
	if err != nil {
		result.AddMessage("Row %d (%s): could not resolve category %q: %v", row.RowNumber, row.Name, row.Category, err)
		return
	}
	if err := im.categories.Associate(ctx, candidateID, categoryID); err != nil {
		result.AddMessage("Row %d (%s): could not associate category %q: %v", row.RowNumber, row.Name, row.Category, err)
	}
}

// persistCriteria extracts the evaluation sections from the description and
// stores each non-empty one as its own attribute.
func (im *Importer) persistCriteria(ctx context.Context, candidateID int64, row *models.ImportRow, result *models.ImportResult) {
	for key, value := range ExtractCriteria(row.Description) {
		if value == "" {
			continue
		}
		if err := im.candidates.SetAttribute(ctx, candidateID, string(key), value); err != nil {
			result.AddMessage("Row %d (%s): failed to store %s: %v", row.RowNumber, row.Name, key, err)
		}
	}
}

// attachPhoto attaches a photo either from an uploaded asset matched by
// candidate name (photo column says "yes") or by fetching a URL. Failure is
// non-fatal but surfaced as a warning so the operator can see why a photo
// did not attach.
func (im *Importer) attachPhoto(ctx context.Context, candidateID int64, row *models.ImportRow, result *models.ImportResult) {
	var key string
	var err error

	if models.NormalizeTopStatus(row.Photo) == models.TopStatusYes {
		key, err = im.photos.AttachByName(ctx, candidateID, row.Name)
	} else if CleanURL(row.Photo) != "" {
		key, err = im.photos.AttachFromURL(ctx, candidateID, CleanURL(row.Photo))
	} else {
		return
	}

	if err != nil {
		result.AddMessage("Row %d (%s): photo not attached: %v", row.RowNumber, row.Name, err)
		return
	}

	if err := im.candidates.SetAttribute(ctx, candidateID, models.AttrPhotoKey, key); err != nil {
		result.AddMessage("Row %d (%s): failed to store photo key: %v", row.RowNumber, row.Name, err)
		return
	}
	result.PhotosAttached++
}

// delimiterName renders a delimiter for operator messages.
func delimiterName(delim rune) string {
	switch delim {
	case '\t':
		return "TAB"
	case '|':
		return "PIPE"
	default:
		return string(delim)
	}
}
