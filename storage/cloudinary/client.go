// Package cloudinary adapts the Cloudinary upload API to the room image lifecycle:
// uploads land in a fixed folder and deletions are keyed by public id.
package cloudinary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"strings"
	"time"

	"grand-hotel-backend/config"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const (
	DefaultFolder  = "grand-hotel/rooms"
	transformation = "c_limit,w_1920,h_1080/q_auto:good/f_auto"
)

var allowedFormats = api.CldAPIArray{"jpg", "jpeg", "png", "webp"}

// uploadAPI is the subset of *uploader.API the client needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

type UploadedImage struct {
	URL        string `json:"url"`
	StorageKey string `json:"cloudinaryId"`
}

// RemoteStorageError reports a failed call against the media host.
type RemoteStorageError struct {
	Key string
	Op  string
	Err error
}

func (e *RemoteStorageError) Error() string {
	return fmt.Sprintf("cloudinary %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *RemoteStorageError) Unwrap() error { return e.Err }

type Client struct {
	api     uploadAPI
	folder  string
	timeout time.Duration
	retries int
	newID   func() string
}

// NewClient builds a client from explicit credentials; nothing is read from the environment here.
func NewClient(cfg config.CloudinaryConfig) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials are not configured")
	}
	c, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, err
	}
	log.Printf("☁️  Cloudinary configured (cloud=%s folder=%s)", cfg.CloudName, folderOrDefault(cfg.Folder))
	return newClient(&c.Upload, cfg), nil
}

func newClient(a uploadAPI, cfg config.CloudinaryConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	return &Client{
		api:     a,
		folder:  folderOrDefault(cfg.Folder),
		timeout: timeout,
		retries: retries,
		newID:   func() string { return "room-" + uuid.NewString() },
	}
}

func folderOrDefault(folder string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return DefaultFolder
	}
	return folder
}

func (c *Client) Folder() string { return c.folder }

// Upload stores file under the room folder. The returned StorageKey is the full public id.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename string) (UploadedImage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	publicID := c.newID()
	res, err := c.api.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         c.folder,
		AllowedFormats: allowedFormats,
		Transformation: transformation,
	})
	if err == nil && res != nil && res.Error.Message != "" {
		err = errors.New(res.Error.Message)
	}
	if err == nil && res == nil {
		err = errors.New("empty upload response")
	}
	if err != nil {
		return UploadedImage{}, &RemoteStorageError{Key: filename, Op: "upload", Err: err}
	}

	img := UploadedImage{URL: res.SecureURL, StorageKey: res.PublicID}
	if img.URL == "" {
		img.URL = res.URL
	}
	if img.StorageKey == "" {
		img.StorageKey = c.QualifyKey(publicID)
	}
	log.Printf("✅ Image uploaded to Cloudinary: %s (%s)", img.StorageKey, filename)
	return img, nil
}

// Delete destroys a remote image. The persisted storage key wins; the URL is only
// used to derive a key when none was stored.
func (c *Client) Delete(ctx context.Context, storageKey, imageURL string) error {
	key := strings.TrimSpace(storageKey)
	if key == "" {
		key = c.KeyFromURL(imageURL)
	}
	if key == "" {
		return &RemoteStorageError{Key: imageURL, Op: "destroy", Err: errors.New("no storage key")}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		lastErr = c.destroyOnce(ctx, key)
		if lastErr == nil {
			return nil
		}
		log.Printf("⚠️  Cloudinary destroy %s attempt %d failed: %v", key, attempt+1, lastErr)
	}
	return &RemoteStorageError{Key: key, Op: "destroy", Err: lastErr}
}

func (c *Client) destroyOnce(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: key})
	if err != nil {
		return err
	}
	if res == nil {
		return errors.New("empty destroy response")
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	switch res.Result {
	case "ok":
		log.Printf("🗑️  Cloudinary image deleted: %s", key)
		return nil
	case "not found":
		log.Printf("⚠️  Cloudinary image already gone: %s", key)
		return nil
	default:
		return fmt.Errorf("unexpected destroy result %q", res.Result)
	}
}

// KeyFromURL derives a public id from the last path segment of a delivery URL,
// e.g. https://res.cloudinary.com/demo/image/upload/v1/grand-hotel/rooms/room-1.jpg -> grand-hotel/rooms/room-1.
func (c *Client) KeyFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		return ""
	}
	return c.folder + "/" + base
}

// QualifyKey prefixes a bare file name with the room folder. Already qualified keys are returned as is.
func (c *Client) QualifyKey(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" || strings.HasPrefix(name, c.folder+"/") {
		return name
	}
	return c.folder + "/" + name
}
