package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"sitesync-media/internal/media"
)

const imageJPEGQuality = 80

// S3Store is the self-hosted alternative to the Cloudinary backend. Images
// are recompressed to approximate the host's automatic quality; videos go up
// as multipart uploads with the same 6 MB part size. S3 derives no metadata,
// so duration and thumbnail stay null.
type S3Store struct {
	client        *s3.Client
	uploader      *manager.Uploader
	videoUploader *manager.Uploader
	bucket        string
	region        string
}

func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		videoUploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = videoChunkSize
		}),
		bucket: bucket,
		region: region,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, localPath, mimeType string) (*UploadedAsset, error) {
	kind := KindFor(mimeType)

	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var body io.Reader = f
	contentType := mimeType
	ext := filepath.Ext(localPath)

	if kind == media.KindImage && recompressable(mimeType) {
		recompressed, err := recompressJPEG(localPath)
		if err != nil {
			return nil, err
		}
		body = recompressed
		contentType = "image/jpeg"
		ext = ".jpg"
	}

	key := folderFor(kind) + "/" + uuid.NewString() + ext
	uploader := s.uploader
	if kind == media.KindVideo {
		uploader = s.videoUploader
	}
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}

	item := media.Item{
		URL:    s.publicURL(key),
		Kind:   kind,
		Format: strings.TrimPrefix(ext, "."),
	}
	return &UploadedAsset{Item: item, RemoteID: key}, nil
}

func (s *S3Store) Remove(ctx context.Context, asset *UploadedAsset) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(asset.RemoteID),
	})
	return err
}

func (s *S3Store) publicURL(key string) string {
	escaped := url.PathEscape(key)
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// GIFs keep their animation and WEBP has no imaging encoder, so only the
// plain raster formats are recompressed.
func recompressable(mimeType string) bool {
	return mimeType == "image/jpeg" || mimeType == "image/png"
}

func recompressJPEG(localPath string) (io.Reader, error) {
	img, err := imaging.Open(localPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(imageJPEGQuality)); err != nil {
		return nil, err
	}
	return &buf, nil
}
