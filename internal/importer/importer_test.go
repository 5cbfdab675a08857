package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"award-import-engine/internal/models"
)

// fakeStore is an in-memory CandidateStore and CategoryStore.
type fakeStore struct {
	mu         sync.Mutex
	nextID     int64
	candidates map[int64]*models.Candidate
	attrs      map[int64]map[string]string
	categories map[string]int64
	assoc      map[int64][]int64

	failCreate bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:     1,
		candidates: make(map[int64]*models.Candidate),
		attrs:      make(map[int64]map[string]string),
		categories: make(map[string]int64),
		assoc:      make(map[int64][]int64),
	}
}

func (f *fakeStore) FindByImportID(ctx context.Context, importID string) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.ImportID == importID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindByName(ctx context.Context, name string) (*models.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) Create(ctx context.Context, importID, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return 0, errors.New("insert failed")
	}
	id := f.nextID
	f.nextID++
	f.candidates[id] = &models.Candidate{ID: id, ImportID: importID, Name: name}
	return id, nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, importID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.candidates[id]
	if !ok {
		return fmt.Errorf("candidate %d not found", id)
	}
	c.ImportID = importID
	c.Name = name
	return nil
}

func (f *fakeStore) SetAttribute(ctx context.Context, candidateID int64, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attrs[candidateID] == nil {
		f.attrs[candidateID] = make(map[string]string)
	}
	f.attrs[candidateID][key] = value
	return nil
}

func (f *fakeStore) ResolveOrCreate(ctx context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.categories[name]; ok {
		return id, nil
	}
	id := int64(1000 + len(f.categories))
	f.categories[name] = id
	return id, nil
}

func (f *fakeStore) Associate(ctx context.Context, candidateID, categoryID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assoc[candidateID] = append(f.assoc[candidateID], categoryID)
	return nil
}

func (f *fakeStore) byName(name string) *models.Candidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.candidates {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// fakeAttacher records photo attachment calls.
type fakeAttacher struct {
	byName  []string
	byURL   []string
	failAll bool
}

func (f *fakeAttacher) AttachByName(ctx context.Context, candidateID int64, name string) (string, error) {
	if f.failAll {
		return "", errors.New("no matching asset")
	}
	f.byName = append(f.byName, name)
	return fmt.Sprintf("photos/candidates/%d.jpg", candidateID), nil
}

func (f *fakeAttacher) AttachFromURL(ctx context.Context, candidateID int64, photoURL string) (string, error) {
	if f.failAll {
		return "", errors.New("fetch failed")
	}
	f.byURL = append(f.byURL, photoURL)
	return fmt.Sprintf("photos/candidates/%d.jpg", candidateID), nil
}

func TestImport_CreatesCandidates(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	csv := "ID,Name,Organisation,Kategorie,Top 50\n" +
		"101,Maria Schmidt,Stadtwerke,Verwaltung,Ja\n" +
		"102,Jonas Weber,MoveNow GmbH,Start-up,Nein\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	require.Equal(t, 0, result.Errors, "messages: %v", result.Messages)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Skipped)

	maria := store.byName("Maria Schmidt")
	require.NotNil(t, maria)
	assert.Equal(t, "101", maria.ImportID)
	assert.Equal(t, "Gov", store.attrs[maria.ID][models.AttrCategoryType])
	assert.Equal(t, "yes", store.attrs[maria.ID][models.AttrTop50Status])

	jonas := store.byName("Jonas Weber")
	require.NotNil(t, jonas)
	assert.Equal(t, "no", store.attrs[jonas.ID][models.AttrTop50Status])

	// Category resolved once and associated.
	assert.Contains(t, store.categories, "Gov")
	assert.Contains(t, store.categories, "Startup")
	assert.Len(t, store.assoc[maria.ID], 1)
}

func TestImport_SkipsExistingByDefault(t *testing.T) {
	store := newFakeStore()
	_, err := store.Create(context.Background(), "101", "Maria Schmidt")
	require.NoError(t, err)

	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n102,Jonas Weber\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, result.Skipped)
}

func TestImport_UpdatesExistingWhenEnabled(t *testing.T) {
	store := newFakeStore()
	id, err := store.Create(context.Background(), "101", "Maria Schmidt")
	require.NoError(t, err)

	imp := New(nil, store, store, nil)
	csv := "ID,Name,Position\n101,Maria Schmidt,Leiterin Innovation\n"

	result := imp.Import(context.Background(), []byte(csv), Options{UpdateExisting: true})

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "Leiterin Innovation", store.attrs[id][models.AttrPosition])
}

func TestImport_MatchesByImportIDBeforeName(t *testing.T) {
	store := newFakeStore()
	id, err := store.Create(context.Background(), "101", "Old Name")
	require.NoError(t, err)

	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,New Name\n"

	result := imp.Import(context.Background(), []byte(csv), Options{UpdateExisting: true})

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "New Name", store.candidates[id].Name)
}

func TestImport_RerunIsIdempotent(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n102,Jonas Weber\n"

	first := imp.Import(context.Background(), []byte(csv), Options{UpdateExisting: true})
	second := imp.Import(context.Background(), []byte(csv), Options{UpdateExisting: true})

	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Len(t, store.candidates, 2)
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	store := newFakeStore()
	_, err := store.Create(context.Background(), "101", "Maria Schmidt")
	require.NoError(t, err)

	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n102,Jonas Weber\n"

	result := imp.Import(context.Background(), []byte(csv), Options{
		UpdateExisting: true,
		DryRun:         true,
	})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Len(t, store.candidates, 1, "dry run must not create candidates")
	assert.Empty(t, store.attrs)
}

func TestImport_MissingNameIsRowError(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,\n102,Jonas Weber\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Errors)
	assert.Equal(t, 2, result.ErrorDetails[0].Row)
	assert.Equal(t, "Unknown", result.ErrorDetails[0].Name)
}

func TestImport_ColumnCountMismatchIsRowError(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name,Organisation\n101,Maria Schmidt\n102,Jonas Weber,MoveNow GmbH\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 1, result.Created)
	require.Equal(t, 1, result.Errors)
	assert.Contains(t, result.ErrorDetails[0].Error, "column count mismatch")
}

func TestImport_RowErrorDoesNotAbortRun(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,\n102,\n103,Jonas Weber\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 2, result.Errors)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, result.Processed(), 3)
}

func TestImport_EmptyRowsAreNotCounted(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n,\n\n102,Jonas Weber\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 2, result.Processed())
}

func TestImport_MissingNameColumnIsFatal(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Organisation\n101,Stadtwerke\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 0, result.Processed())
	require.NotEmpty(t, result.Messages)
	assert.Contains(t, strings.Join(result.Messages, "\n"), "Name")
}

func TestImport_EmptyFileIsFatal(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	result := imp.Import(context.Background(), []byte{}, Options{})

	assert.Equal(t, 0, result.Processed())
	assert.Contains(t, strings.Join(result.Messages, "\n"), "empty")
}

func TestImport_CancelledContextAborts(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	csv := "ID,Name\n101,Maria Schmidt\n"
	result := imp.Import(ctx, []byte(csv), Options{})

	assert.Equal(t, 0, result.Created)
	assert.Contains(t, strings.Join(result.Messages, "\n"), "Import aborted by user")
}

func TestImport_DuplicateHeaderWarning(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "Name,Kandidat,Organisation\nMaria Schmidt,Ignored,Stadtwerke\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 1, result.Created)
	maria := store.byName("Maria Schmidt")
	require.NotNil(t, maria, "first matching column wins")
	assert.Contains(t, strings.Join(result.Messages, "\n"), "keeping the first")
}

func TestImport_CriteriaStoredAsAttributes(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	csv := "Name;Beschreibung\n" +
		"Maria Schmidt;Mut & Pioniergeist: Treibt mutig voran. Innovationsgrad: Sehr hoch.\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	require.Equal(t, 1, result.Created, "messages: %v", result.Messages)
	maria := store.byName("Maria Schmidt")
	require.NotNil(t, maria)
	assert.Equal(t, "Treibt mutig voran.", store.attrs[maria.ID][string(models.CriteriaCourage)])
	assert.Equal(t, "Sehr hoch.", store.attrs[maria.ID][string(models.CriteriaInnovation)])
	_, hasEmpty := store.attrs[maria.ID][string(models.CriteriaRelevance)]
	assert.False(t, hasEmpty, "unmentioned criteria stay unset")
}

func TestImport_PhotoByStatusFlag(t *testing.T) {
	store := newFakeStore()
	attacher := &fakeAttacher{}
	imp := New(nil, store, store, attacher)
	csv := "Name,Foto\nMaria Schmidt,Ja\n"

	result := imp.Import(context.Background(), []byte(csv), Options{ImportPhotos: true})

	assert.Equal(t, 1, result.PhotosAttached)
	assert.Equal(t, []string{"Maria Schmidt"}, attacher.byName)
	maria := store.byName("Maria Schmidt")
	assert.NotEmpty(t, store.attrs[maria.ID][models.AttrPhotoKey])
}

func TestImport_PhotoByURL(t *testing.T) {
	store := newFakeStore()
	attacher := &fakeAttacher{}
	imp := New(nil, store, store, attacher)
	csv := "Name,Foto\nMaria Schmidt,https://example.org/maria.jpg\n"

	result := imp.Import(context.Background(), []byte(csv), Options{ImportPhotos: true})

	assert.Equal(t, 1, result.PhotosAttached)
	assert.Equal(t, []string{"https://example.org/maria.jpg"}, attacher.byURL)
}

func TestImport_PhotoFailureIsWarningNotError(t *testing.T) {
	store := newFakeStore()
	attacher := &fakeAttacher{failAll: true}
	imp := New(nil, store, store, attacher)
	csv := "Name,Foto\nMaria Schmidt,Ja\n"

	result := imp.Import(context.Background(), []byte(csv), Options{ImportPhotos: true})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 0, result.PhotosAttached)
	assert.Contains(t, strings.Join(result.Messages, "\n"), "photo not attached")
}

func TestImport_PhotosDisabledByDefault(t *testing.T) {
	store := newFakeStore()
	attacher := &fakeAttacher{}
	imp := New(nil, store, store, attacher)
	csv := "Name,Foto\nMaria Schmidt,Ja\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 0, result.PhotosAttached)
	assert.Empty(t, attacher.byName)
}

func TestImport_StorageFailureIsRowError(t *testing.T) {
	store := newFakeStore()
	store.failCreate = true
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Errors)
}

func TestImport_ProgressCallback(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	var sb strings.Builder
	sb.WriteString("ID,Name\n")
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "%d,Candidate %d\n", i+1, i+1)
	}

	var updates []Progress
	result := imp.Import(context.Background(), []byte(sb.String()), Options{
		BatchSize: 50,
		Progress: func(p Progress) {
			updates = append(updates, p)
		},
	})

	assert.Equal(t, 120, result.Created)
	require.Len(t, updates, 3)
	assert.Equal(t, 1, updates[0].CurrentBatch)
	assert.Equal(t, 3, updates[0].TotalBatches)
	assert.Equal(t, 100, updates[2].Percentage)
}

func TestImport_FinalSummaryMessage(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "ID,Name\n101,Maria Schmidt\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	require.NotEmpty(t, result.Messages)
	last := result.Messages[len(result.Messages)-1]
	assert.Equal(t, "Import complete: 1 created, 0 updated, 0 skipped, 0 errors", last)
}

func TestImportFile_MissingFile(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	result := imp.ImportFile(context.Background(), "/nonexistent/path.csv", Options{})

	assert.Equal(t, 0, result.Processed())
	assert.Contains(t, strings.Join(result.Messages, "\n"), "not found")
}

func TestImportFile_OversizedFileIsFatal(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)

	path := filepath.Join(t.TempDir(), "candidates.csv")
	csv := "ID,Name\n101,Maria Schmidt\n102,Jonas Weber\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	result := imp.ImportFile(context.Background(), path, Options{MaxFileBytes: 10})

	assert.Equal(t, 0, result.Processed())
	assert.Empty(t, store.candidates, "oversized file must be rejected before any row")
	assert.Contains(t, strings.Join(result.Messages, "\n"), "maximum is 10 bytes")
}

func TestImport_HeaderAfterTitleRows(t *testing.T) {
	store := newFakeStore()
	imp := New(nil, store, store, nil)
	csv := "Award Candidates 2026,\nExported 2026-08-01,\nID,Name\n101,Maria Schmidt\n"

	result := imp.Import(context.Background(), []byte(csv), Options{})

	assert.Equal(t, 1, result.Created, "messages: %v", result.Messages)
}
