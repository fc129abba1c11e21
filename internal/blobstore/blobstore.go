// Package blobstore stores image bytes under opaque, per-account locators.
package blobstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/oggyb/fitsocial/internal/cache"
	"github.com/oggyb/fitsocial/internal/config"
	svcErr "github.com/oggyb/fitsocial/internal/errors"
)

// Store is the blob store client consumed by the services.
type Store interface {
	// Put stores data for an account and returns its locator.
	Put(ctx context.Context, accountID string, data []byte) (string, error)
	Get(ctx context.Context, locator string) ([]byte, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, locator string) error
	ResolveDownloadURL(ctx context.Context, locator string) (string, error)
}

const imagesPrefix = "images/"

// NewLocator builds images/{accountId}/{uuid}.
func NewLocator(accountID string) (string, error) {
	if accountID == "" || strings.Contains(accountID, "/") {
		return "", svcErr.ValidationFailed("account_id", "invalid account id for blob locator")
	}
	return imagesPrefix + accountID + "/" + uuid.NewString(), nil
}

// OwnerOf returns the account id a locator is scoped to.
func OwnerOf(locator string) (string, bool) {
	rest, ok := strings.CutPrefix(locator, imagesPrefix)
	if !ok {
		return "", false
	}
	owner, _, ok := strings.Cut(rest, "/")
	return owner, ok && owner != ""
}

func checkLocator(locator string) error {
	if _, ok := OwnerOf(locator); !ok {
		return svcErr.ValidationFailed("locator", fmt.Sprintf("invalid blob locator %q", locator))
	}
	return nil
}

// New picks the driver named by BLOB_DRIVER.
func New(cfg *config.Config, rc *cache.RedisCache) (Store, error) {
	switch strings.ToLower(cfg.Blob.Driver) {
	case "redis", "":
		return NewRedisStore(rc, cfg.Blob.PublicBaseURL), nil
	case "cloudinary":
		return NewCloudinaryStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported blob driver %q", cfg.Blob.Driver)
	}
}
