package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Numeric accepts a JSON number or a numeric string ("2", "45000").
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Numeric(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	*n = Numeric(num)
	return nil
}

func (n Numeric) IsZero() bool { return strings.TrimSpace(string(n)) == "" }

func (n Numeric) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a number", string(n))
	}
	return f, nil
}

// Int rejects fractional values such as "2.5".
func (n Numeric) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not an integer", string(n))
	}
	return int(f), nil
}

// StringList accepts either a single string or an array of strings.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = StringList{s}.clean()
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return errors.New("expected a string or an array of strings")
	}
	*l = StringList(items).clean()
	return nil
}

func (l StringList) clean() StringList {
	out := make(StringList, 0, len(l))
	for _, s := range l {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ImageInput is an image reference supplied in a JSON payload: either a bare URL
// string or an object returned by the upload endpoints.
type ImageInput struct {
	URL          string `json:"url"`
	CloudinaryID string `json:"cloudinaryId"`
	Alt          string `json:"alt"`
	IsPrimary    bool   `json:"isPrimary"`
}

func (i *ImageInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = ImageInput{URL: strings.TrimSpace(s)}
		return nil
	}
	type plain ImageInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	// older clients send publicId
	if p.CloudinaryID == "" {
		var alt struct {
			PublicID string `json:"publicId"`
		}
		_ = json.Unmarshal(b, &alt)
		p.CloudinaryID = alt.PublicID
	}
	*i = ImageInput(p)
	return nil
}

type ImageSourceKind int

const (
	SourceFileUpload ImageSourceKind = iota
	SourceDirectURL
)

// ImageSource is the single shape every image ingestion path is reduced to before
// the Image records are built. File fields apply to SourceFileUpload, the rest to SourceDirectURL.
type ImageSource struct {
	Kind ImageSourceKind

	File     io.Reader
	Filename string

	URL        string
	StorageKey string
	Alt        string
	Primary    bool
}

func FileSource(r io.Reader, filename string) ImageSource {
	return ImageSource{Kind: SourceFileUpload, File: r, Filename: filename}
}

func (i ImageInput) Source() ImageSource {
	return ImageSource{
		Kind:       SourceDirectURL,
		URL:        strings.TrimSpace(i.URL),
		StorageKey: strings.TrimSpace(i.CloudinaryID),
		Alt:        i.Alt,
		Primary:    i.IsPrimary,
	}
}

type RoomInput struct {
	Number      string       `json:"number"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Category    string       `json:"category"`
	Capacity    Numeric      `json:"capacity"`
	Price       Numeric      `json:"price"`
	Size        string       `json:"size"`
	BedType     string       `json:"bedType"`
	Status      string       `json:"status"`
	Description string       `json:"description"`
	Amenities   StringList   `json:"amenities"`
	Images      []ImageInput `json:"images"`
}

// RoomPatch holds an update payload; nil fields were not supplied.
type RoomPatch struct {
	Number      *string       `json:"number"`
	Name        *string       `json:"name"`
	Type        *string       `json:"type"`
	Category    *string       `json:"category"`
	Capacity    *Numeric      `json:"capacity"`
	Price       *Numeric      `json:"price"`
	Size        *string       `json:"size"`
	BedType     *string       `json:"bedType"`
	Status      *string       `json:"status"`
	Description *string       `json:"description"`
	Amenities   *StringList   `json:"amenities"`
	Images      *[]ImageInput `json:"images"`
	IsActive    *bool         `json:"isActive"` // rejected when present
}
