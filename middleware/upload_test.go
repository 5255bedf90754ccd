package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type part struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, field string, parts []part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		w.Write(p.data)
	}
	if err := mw.WriteField("number", "101"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func newUploadRouter(required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/upload", UploadImages("images", MaxImageFiles, required), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"files": len(UploadedFiles(c))})
	})
	return r
}

func TestUploadImages(t *testing.T) {
	png := part{"a.png", "image/png", pngHeader}

	tooMany := make([]part, MaxImageFiles+1)
	for i := range tooMany {
		tooMany[i] = png
	}

	tests := []struct {
		name      string
		parts     []part
		required  bool
		wantCode  int
		wantFiles int
		wantMsg   string
	}{
		{"valid png", []part{png}, false, http.StatusOK, 1, ""},
		{"octet-stream png", []part{{"a.png", "application/octet-stream", pngHeader}}, false, http.StatusOK, 1, ""},
		{"text disguised as png", []part{{"a.png", "image/png", []byte("hello world")}}, false, http.StatusBadRequest, 0, ErrFileType.Error()},
		{"declared pdf", []part{{"a.pdf", "application/pdf", pngHeader}}, false, http.StatusBadRequest, 0, ErrFileType.Error()},
		{"too many files", tooMany, false, http.StatusBadRequest, 0, ErrTooManyFiles.Error()},
		{"no file optional", nil, false, http.StatusOK, 0, ""},
		{"no file required", nil, true, http.StatusBadRequest, 0, ErrNoFileUploaded.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, "images", tt.parts)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			newUploadRouter(tt.required).ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("status = %v, want %v (body %s)", w.Code, tt.wantCode, w.Body.String())
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if tt.wantCode == http.StatusOK {
				if got := int(resp["files"].(float64)); got != tt.wantFiles {
					t.Errorf("files = %v, want %v", got, tt.wantFiles)
				}
				return
			}
			if resp["message"] != tt.wantMsg {
				t.Errorf("message = %v, want %v", resp["message"], tt.wantMsg)
			}
		})
	}
}

func TestUploadImages_RejectsOversizedFile(t *testing.T) {
	big := append(append([]byte{}, pngHeader...), make([]byte, MaxImageSize)...)
	body, contentType := multipartBody(t, "images", []part{{"big.png", "image/png", big}})

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	newUploadRouter(false).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(ErrFileTooLarge.Error())) {
		t.Errorf("body = %s, want the size limit message", w.Body.String())
	}
}

func TestUploadImages_JSONPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewBufferString(`{"number":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	newUploadRouter(false).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %v, want %v", w.Code, http.StatusOK)
	}
}
