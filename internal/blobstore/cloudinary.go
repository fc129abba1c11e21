package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/oggyb/fitsocial/internal/config"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// CloudinaryStore keeps blobs as Cloudinary images. The locator is used as
// the public id, prefixed with the configured folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	http   *http.Client
}

// NewCloudinaryStore creates a new Cloudinary-backed store
func NewCloudinaryStore(cfg *config.Config) (*CloudinaryStore, error) {
	if cfg.Blob.CloudName == "" || cfg.Blob.APIKey == "" || cfg.Blob.APISecret == "" {
		return nil, fmt.Errorf("cloudinary configuration is missing")
	}

	cld, err := cloudinary.NewFromParams(cfg.Blob.CloudName, cfg.Blob.APIKey, cfg.Blob.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &CloudinaryStore{
		cld:    cld,
		folder: cfg.Blob.Folder,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (s *CloudinaryStore) publicID(locator string) string {
	if s.folder == "" {
		return locator
	}
	return s.folder + "/" + locator
}

func (s *CloudinaryStore) Put(ctx context.Context, accountID string, data []byte) (string, error) {
	locator, err := NewLocator(accountID)
	if err != nil {
		return "", err
	}

	overwrite := false
	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:     s.publicID(locator),
		Overwrite:    &overwrite,
		ResourceType: "image",
	})
	if err != nil {
		return "", svcErr.Unavailable("upload image", err)
	}
	if res.Error.Message != "" {
		return "", svcErr.Unavailable("upload image", fmt.Errorf("cloudinary: %s", res.Error.Message))
	}
	return locator, nil
}

func (s *CloudinaryStore) Get(ctx context.Context, locator string) ([]byte, error) {
	url, err := s.ResolveDownloadURL(ctx, locator)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, svcErr.Unavailable("download image", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, svcErr.NotFound("blob", locator)
	case resp.StatusCode >= 300:
		return nil, svcErr.Unavailable("download image", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, svcErr.Unavailable("download image", err)
	}
	return b, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, locator string) error {
	if err := checkLocator(locator); err != nil {
		return err
	}
	res, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     s.publicID(locator),
		ResourceType: "image",
	})
	if err != nil {
		return svcErr.Unavailable("delete image", err)
	}
	if res.Error.Message != "" {
		return svcErr.Unavailable("delete image", fmt.Errorf("cloudinary: %s", res.Error.Message))
	}
	// "ok" or "not found"; both leave the blob gone
	return nil
}

func (s *CloudinaryStore) ResolveDownloadURL(_ context.Context, locator string) (string, error) {
	if err := checkLocator(locator); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/%s",
		s.cld.Config.Cloud.CloudName,
		s.publicID(locator),
	), nil
}
