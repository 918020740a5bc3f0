package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sitesync-media/internal/apperr"
	"sitesync-media/internal/media"
	"sitesync-media/internal/storage"
	"sitesync-media/internal/utils"
)

// Catalog is the slice of the repository the services need.
type Catalog interface {
	Create(ctx context.Context, c *media.Collection) error
	DistinctVerticals(ctx context.Context) ([]string, error)
	FindByVertical(ctx context.Context, vertical string) ([]*media.Collection, error)
	FindAll(ctx context.Context) ([]*media.Collection, error)
}

// Metadata is the imageData payload accompanying an upload.
type Metadata struct {
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description" validate:"required"`
	MarketingVertical string `json:"marketingVertical" validate:"required"`
}

// LocalFile is one accepted temp file, in submission order.
type LocalFile struct {
	Path     string
	MimeType string
}

// Uploader runs the upload-and-catalog pipeline: validate, fan-out uploads
// to the media host, persist one collection, clean up temp files. A failure
// at any step is terminal for the submission; nothing is retried.
type Uploader struct {
	store      storage.MediaStore
	catalog    Catalog
	log        *zap.SugaredLogger
	compensate bool
}

func NewUploader(store storage.MediaStore, catalog Catalog, log *zap.SugaredLogger, compensate bool) *Uploader {
	return &Uploader{store: store, catalog: catalog, log: log, compensate: compensate}
}

func (u *Uploader) Submit(ctx context.Context, ownerID string, meta Metadata, files []LocalFile) (*media.Collection, error) {
	if fields := utils.ValidateStruct(meta); len(fields) > 0 {
		return nil, apperr.BadRequest("Missing required fields: " + strings.Join(fields, ", "))
	}
	if len(files) == 0 {
		return nil, apperr.BadRequest("No files uploaded")
	}

	// One result slot per file so the catalog keeps submission order no
	// matter how the concurrent uploads interleave.
	assets := make([]*storage.UploadedAsset, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			asset, err := u.store.Upload(gctx, f.Path, f.MimeType)
			if err != nil {
				return err
			}
			assets[i] = asset
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.abort(ctx, assets, files)
		return nil, apperr.UploadFailed(err)
	}

	items := make([]media.Item, len(assets))
	for i, a := range assets {
		items[i] = a.Item
	}
	collection := &media.Collection{
		Title:             meta.Title,
		Description:       meta.Description,
		MarketingVertical: meta.MarketingVertical,
		Media:             items,
		OwnerID:           ownerID,
	}
	if err := u.catalog.Create(ctx, collection); err != nil {
		u.removeTempFiles(paths(files))
		return nil, apperr.Storage(err)
	}

	u.removeTempFiles(paths(files))
	return collection, nil
}

// abort cleans up after a failed upload fan-out: temp copies of the files
// that did make it to the host are deleted, and, when compensation is
// enabled, the remote assets as well. The host-side leak is otherwise
// accepted: there is no record to reconcile against.
func (u *Uploader) abort(ctx context.Context, assets []*storage.UploadedAsset, files []LocalFile) {
	uploaded := make([]string, 0, len(files))
	for i, a := range assets {
		if a == nil {
			continue
		}
		uploaded = append(uploaded, files[i].Path)
		if u.compensate {
			if err := u.store.Remove(ctx, a); err != nil {
				u.log.Warnf("compensating delete failed for %s: %v", a.RemoteID, err)
			}
		}
	}
	u.removeTempFiles(uploaded)
}

func (u *Uploader) removeTempFiles(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			u.log.Errorf("failed to delete temp file %s: %v", p, err)
		}
	}
}

func paths(files []LocalFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
