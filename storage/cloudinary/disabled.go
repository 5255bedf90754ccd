package cloudinary

import (
	"context"
	"errors"
	"io"
	"strings"
)

var ErrNotConfigured = errors.New("media storage is not configured")

// Disabled stands in for Client when no Cloudinary credentials are set: uploads fail,
// deletions report an error that callers treat as non-fatal. Folder still qualifies
// bare keys so stored images can be pulled from rooms.
type Disabled struct {
	Folder string
}

func (Disabled) Upload(ctx context.Context, file io.Reader, filename string) (UploadedImage, error) {
	return UploadedImage{}, &RemoteStorageError{Key: filename, Op: "upload", Err: ErrNotConfigured}
}

func (Disabled) Delete(ctx context.Context, storageKey, imageURL string) error {
	return &RemoteStorageError{Key: storageKey, Op: "destroy", Err: ErrNotConfigured}
}

func (d Disabled) QualifyKey(name string) string {
	folder := folderOrDefault(d.Folder)
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" || strings.HasPrefix(name, folder+"/") {
		return name
	}
	return folder + "/" + name
}
