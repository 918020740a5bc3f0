package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitesync-media/internal/media"
)

const (
	cloudinaryBaseURL = "https://api.cloudinary.com/v1_1"
	videoChunkSize    = 6_000_000
	videoEager        = "q_auto/mp4"
)

// CloudinaryStore talks to the Cloudinary upload API directly. Images are
// uploaded in one signed request with automatic quality; videos additionally
// request an eager MP4 derivation and go up in 6 MB chunks.
type CloudinaryStore struct {
	cloudName  string
	apiKey     string
	apiSecret  string
	baseURL    string
	httpClient *http.Client
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) *CloudinaryStore {
	return &CloudinaryStore{
		cloudName:  cloudName,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		baseURL:    cloudinaryBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type uploadResponse struct {
	PublicID     string  `json:"public_id"`
	SecureURL    string  `json:"secure_url"`
	Format       string  `json:"format"`
	Duration     float64 `json:"duration"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *CloudinaryStore) Upload(ctx context.Context, localPath, mimeType string) (*UploadedAsset, error) {
	kind := KindFor(mimeType)

	params := map[string]string{
		"folder":    folderFor(kind),
		"quality":   "auto",
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if kind == media.KindVideo {
		params["eager"] = videoEager
	}

	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var resp *uploadResponse
	if kind == media.KindVideo && info.Size() > videoChunkSize {
		resp, err = s.uploadChunked(ctx, kind, f, info.Size(), filepath.Base(localPath), params)
	} else {
		resp, err = s.uploadWhole(ctx, kind, f, filepath.Base(localPath), params)
	}
	if err != nil {
		return nil, err
	}

	item := media.Item{
		URL:    resp.SecureURL,
		Kind:   kind,
		Format: resp.Format,
	}
	if kind == media.KindVideo {
		duration := resp.Duration
		item.Duration = &duration
		thumb := resp.ThumbnailURL
		if thumb == "" {
			thumb = frameThumbnail(resp.SecureURL)
		}
		item.Thumbnail = &thumb
	}
	return &UploadedAsset{Item: item, RemoteID: resp.PublicID}, nil
}

// Remove issues a destroy call for an already-uploaded asset. Used only when
// compensation is enabled.
func (s *CloudinaryStore) Remove(ctx context.Context, asset *UploadedAsset) error {
	params := map[string]string{
		"public_id": asset.RemoteID,
		"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
	}
	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("api_key", s.apiKey)
	form.Set("signature", s.sign(params))

	endpoint := fmt.Sprintf("%s/%s/%s/destroy", s.baseURL, s.cloudName, asset.Item.Kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("cloudinary destroy: status %d", res.StatusCode)
	}
	return nil
}

func (s *CloudinaryStore) uploadWhole(ctx context.Context, kind string, src io.Reader, filename string, params map[string]string) (*uploadResponse, error) {
	return s.post(ctx, kind, src, filename, params, nil)
}

// uploadChunked implements Cloudinary's large-upload protocol: sequential
// posts of 6 MB parts tied together by X-Unique-Upload-Id and Content-Range.
// Only the final part's response carries the finished resource.
func (s *CloudinaryStore) uploadChunked(ctx context.Context, kind string, src io.Reader, total int64, filename string, params map[string]string) (*uploadResponse, error) {
	uploadID := uuid.NewString()
	var final *uploadResponse
	for offset := int64(0); offset < total; offset += videoChunkSize {
		end := offset + videoChunkSize
		if end > total {
			end = total
		}
		headers := map[string]string{
			"X-Unique-Upload-Id": uploadID,
			"Content-Range":      fmt.Sprintf("bytes %d-%d/%d", offset, end-1, total),
		}
		resp, err := s.post(ctx, kind, io.LimitReader(src, end-offset), filename, params, headers)
		if err != nil {
			return nil, err
		}
		final = resp
	}
	return final, nil
}

func (s *CloudinaryStore) post(ctx context.Context, kind string, src io.Reader, filename string, params map[string]string, headers map[string]string) (*uploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			for k, v := range params {
				if err := mw.WriteField(k, v); err != nil {
					return err
				}
			}
			if err := mw.WriteField("api_key", s.apiKey); err != nil {
				return err
			}
			if err := mw.WriteField("signature", s.sign(params)); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, src); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	endpoint := fmt.Sprintf("%s/%s/%s/upload", s.baseURL, s.cloudName, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("cloudinary upload: status %d, unreadable body: %w", res.StatusCode, err)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("cloudinary upload: status %d: %s", res.StatusCode, out.Error.Message)
	}
	return &out, nil
}

// sign builds the request signature: parameters sorted by name, joined as a
// query string, with the API secret appended, hashed with SHA-1.
func (s *CloudinaryStore) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + s.apiSecret))
	return hex.EncodeToString(sum[:])
}

// frameThumbnail derives the delivery URL of a video's first frame when the
// host response carries no thumbnail of its own.
func frameThumbnail(videoURL string) string {
	ext := filepath.Ext(videoURL)
	if ext == "" {
		return videoURL + ".jpg"
	}
	return strings.TrimSuffix(videoURL, ext) + ".jpg"
}
