package middleware

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"grand-hotel-backend/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const (
	MaxImageSize  = 10 << 20
	MaxImageFiles = 10

	uploadedFilesKey = "uploadedFiles"
)

var (
	ErrFileTooLarge   = errors.New("Fichier trop volumineux. Maximum 10MB autorisé.")
	ErrTooManyFiles   = errors.New("Trop de fichiers. Maximum 10 images autorisées.")
	ErrFileType       = errors.New("Type de fichier non autorisé. Seuls JPG, JPEG, PNG et WebP sont acceptés.")
	ErrNoFileUploaded = errors.New("Aucun fichier uploadé")
)

var allowedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

func allowedType(t string) bool {
	for _, a := range allowedImageTypes {
		if t == a {
			return true
		}
	}
	return false
}

// UploadImages validates the image files posted under field. Non-multipart requests pass
// through untouched unless required is set.
func UploadImages(field string, maxFiles int, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMultipart(c.Request) {
			if required {
				utils.AbortJSONError(c, http.StatusBadRequest, ErrNoFileUploaded.Error())
				return
			}
			c.Next()
			return
		}

		// room for every file at the limit plus the text fields
		limit := int64(maxFiles)*MaxImageSize + 1<<20
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		form, err := c.MultipartForm()
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
				utils.AbortJSONError(c, http.StatusBadRequest, ErrFileTooLarge.Error())
				return
			}
			utils.AbortJSONError(c, http.StatusBadRequest, fmt.Sprintf("Requête multipart invalide: %v", err))
			return
		}

		files := form.File[field]
		if len(files) > maxFiles {
			utils.AbortJSONError(c, http.StatusBadRequest, ErrTooManyFiles.Error())
			return
		}
		if required && len(files) == 0 {
			utils.AbortJSONError(c, http.StatusBadRequest, ErrNoFileUploaded.Error())
			return
		}
		for _, fh := range files {
			if err := CheckImage(fh); err != nil {
				utils.AbortJSONError(c, http.StatusBadRequest, err.Error())
				return
			}
		}

		c.Set(uploadedFilesKey, files)
		c.Next()
	}
}

// UploadedFiles returns the files validated by UploadImages, if any.
func UploadedFiles(c *gin.Context) []*multipart.FileHeader {
	v, ok := c.Get(uploadedFilesKey)
	if !ok {
		return nil
	}
	files, _ := v.([]*multipart.FileHeader)
	return files
}

// CheckImage enforces the size limit and checks both the declared and the sniffed content type.
func CheckImage(fh *multipart.FileHeader) error {
	if fh.Size > MaxImageSize {
		return ErrFileTooLarge
	}

	if declared := fh.Header.Get("Content-Type"); declared != "" {
		mt, _, err := mime.ParseMediaType(declared)
		if err != nil || (mt != "application/octet-stream" && !allowedType(strings.ToLower(mt))) {
			return ErrFileType
		}
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("lecture du fichier %s: %w", fh.Filename, err)
	}
	defer f.Close()

	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("lecture du fichier %s: %w", fh.Filename, err)
	}
	for _, t := range allowedImageTypes {
		if detected.Is(t) {
			return nil
		}
	}
	return ErrFileType
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}
