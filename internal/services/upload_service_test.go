package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"sitesync-media/internal/apperr"
	"sitesync-media/internal/media"
	"sitesync-media/internal/storage"
)

// fakeStore records uploads and can be told to reject specific file names.
type fakeStore struct {
	mu      sync.Mutex
	failOn  map[string]bool
	uploads int
	removed []string
}

func newFakeStore(failOn ...string) *fakeStore {
	f := &fakeStore{failOn: map[string]bool{}}
	for _, name := range failOn {
		f.failOn[name] = true
	}
	return f
}

func (f *fakeStore) Upload(_ context.Context, localPath, mimeType string) (*storage.UploadedAsset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	name := filepath.Base(localPath)
	if f.failOn[name] {
		return nil, errors.New("host rejected " + name)
	}
	item := media.Item{
		URL:    "https://cdn.example.com/" + name,
		Kind:   storage.KindFor(mimeType),
		Format: "jpg",
	}
	if item.Kind == media.KindVideo {
		d := 12.5
		thumb := "https://cdn.example.com/" + name + ".jpg"
		item.Duration = &d
		item.Thumbnail = &thumb
	}
	return &storage.UploadedAsset{Item: item, RemoteID: name}, nil
}

func (f *fakeStore) Remove(_ context.Context, asset *storage.UploadedAsset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, asset.RemoteID)
	return nil
}

// fakeCatalog is an in-memory Catalog.
type fakeCatalog struct {
	mu        sync.Mutex
	createErr error
	stored    []*media.Collection
	clock     time.Time
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeCatalog) Create(_ context.Context, c *media.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.clock = f.clock.Add(time.Minute)
	c.ID = primitive.NewObjectID()
	c.CreatedAt = f.clock
	f.stored = append(f.stored, c)
	return nil
}

func (f *fakeCatalog) DistinctVerticals(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, c := range f.stored {
		if !seen[c.MarketingVertical] {
			seen[c.MarketingVertical] = true
			out = append(out, c.MarketingVertical)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindByVertical(_ context.Context, vertical string) ([]*media.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*media.Collection
	for _, c := range f.stored {
		if c.MarketingVertical == vertical {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeCatalog) FindAll(_ context.Context) ([]*media.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]*media.Collection(nil), f.stored...)
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(cs []*media.Collection) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].CreatedAt.After(cs[j].CreatedAt) })
}

func writeTemp(t *testing.T, dir, name string) LocalFile {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	return LocalFile{Path: path, MimeType: "image/jpeg"}
}

func validMeta() Metadata {
	return Metadata{Title: "Launch", Description: "Campaign reel", MarketingVertical: "brand-strategy"}
}

func newTestUploader(store storage.MediaStore, catalog Catalog, compensate bool) *Uploader {
	return NewUploader(store, catalog, zap.NewNop().Sugar(), compensate)
}

func TestSubmitRejectsMissingMetadata(t *testing.T) {
	store := newFakeStore()
	u := newTestUploader(store, newFakeCatalog(), false)

	_, err := u.Submit(context.Background(), "admin", Metadata{Title: "only title"}, []LocalFile{{Path: "x", MimeType: "image/png"}})
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "marketingVertical")
	assert.Zero(t, store.uploads, "adapter must not be reached on validation failure")
}

func TestSubmitRejectsZeroFiles(t *testing.T) {
	store := newFakeStore()
	u := newTestUploader(store, newFakeCatalog(), false)

	_, err := u.Submit(context.Background(), "admin", validMeta(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Zero(t, store.uploads)
}

func TestSubmitPreservesSubmissionOrder(t *testing.T) {
	dir := t.TempDir()
	files := []LocalFile{
		writeTemp(t, dir, "a.jpg"),
		writeTemp(t, dir, "b.jpg"),
		writeTemp(t, dir, "c.jpg"),
	}
	catalog := newFakeCatalog()
	u := newTestUploader(newFakeStore(), catalog, false)

	got, err := u.Submit(context.Background(), "admin@example.com", validMeta(), files)
	require.NoError(t, err)
	require.Len(t, got.Media, 3)
	assert.Equal(t, "https://cdn.example.com/a.jpg", got.Media[0].URL)
	assert.Equal(t, "https://cdn.example.com/b.jpg", got.Media[1].URL)
	assert.Equal(t, "https://cdn.example.com/c.jpg", got.Media[2].URL)
	assert.Equal(t, "admin@example.com", got.OwnerID)
	assert.False(t, got.CreatedAt.IsZero())
	require.Len(t, catalog.stored, 1)

	for _, f := range files {
		assert.NoFileExists(t, f.Path, "temp files must be deleted after success")
	}
}

func TestSubmitAbortsWhenOneUploadFails(t *testing.T) {
	dir := t.TempDir()
	files := []LocalFile{
		writeTemp(t, dir, "ok1.jpg"),
		writeTemp(t, dir, "bad.jpg"),
		writeTemp(t, dir, "ok2.jpg"),
	}
	catalog := newFakeCatalog()
	store := newFakeStore("bad.jpg")
	u := newTestUploader(store, catalog, false)

	_, err := u.Submit(context.Background(), "admin", validMeta(), files)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUploadFailed, apperr.KindOf(err))
	assert.Empty(t, catalog.stored, "no document may be created on a partial failure")
	assert.NoFileExists(t, files[0].Path)
	assert.NoFileExists(t, files[2].Path)
	assert.Empty(t, store.removed, "no compensating delete by default")
}

func TestSubmitCompensatesWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	files := []LocalFile{
		writeTemp(t, dir, "ok1.jpg"),
		writeTemp(t, dir, "bad.jpg"),
	}
	store := newFakeStore("bad.jpg")
	u := newTestUploader(store, newFakeCatalog(), true)

	_, err := u.Submit(context.Background(), "admin", validMeta(), files)
	require.Error(t, err)
	assert.Equal(t, []string{"ok1.jpg"}, store.removed)
}

func TestSubmitStorageFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	files := []LocalFile{writeTemp(t, dir, "a.jpg"), writeTemp(t, dir, "b.jpg")}
	catalog := newFakeCatalog()
	catalog.createErr = errors.New("write concern failed")
	u := newTestUploader(newFakeStore(), catalog, false)

	_, err := u.Submit(context.Background(), "admin", validMeta(), files)
	require.Error(t, err)
	assert.Equal(t, apperr.KindStorage, apperr.KindOf(err))
	for _, f := range files {
		assert.NoFileExists(t, f.Path)
	}
}
