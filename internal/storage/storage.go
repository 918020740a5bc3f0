package storage

import (
	"context"

	"sitesync-media/internal/media"
)

// UploadedAsset pairs the catalog item with the host-side handle needed for
// best-effort compensation deletes.
type UploadedAsset struct {
	Item     media.Item
	RemoteID string
}

// MediaStore uploads a local temp file to the configured media host.
type MediaStore interface {
	Upload(ctx context.Context, localPath, mimeType string) (*UploadedAsset, error)
	Remove(ctx context.Context, asset *UploadedAsset) error
}

var videoTypes = map[string]bool{
	"video/mp4":       true,
	"video/quicktime": true,
	"video/x-msvideo": true,
	"video/x-ms-wmv":  true,
}

var imageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// KindFor classifies a MIME type: the fixed video allow-list maps to video,
// everything else is treated as an image.
func KindFor(mimeType string) string {
	if videoTypes[mimeType] {
		return media.KindVideo
	}
	return media.KindImage
}

// AllowedType reports whether the MIME type may be uploaded at all.
func AllowedType(mimeType string) bool {
	return videoTypes[mimeType] || imageTypes[mimeType]
}

func folderFor(kind string) string {
	if kind == media.KindVideo {
		return "marketing-videos"
	}
	return "marketing-images"
}
