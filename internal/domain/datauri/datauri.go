// Package datauri parses and builds the `data:<mime>;base64,<payload>` strings
// used for every image that crosses the API or the AI provider boundary.
package datauri

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

var (
	ErrMalformed       = errors.New("datauri: malformed data uri")
	ErrUnsupportedType = errors.New("datauri: unsupported media type")
	ErrTooLarge        = errors.New("datauri: payload too large")
	ErrContentMismatch = errors.New("datauri: payload does not match declared type")
)

const (
	scheme       = "data:"
	base64Suffix = ";base64"
)

// AllowedImageTypes lists the MIME types accepted for uploaded images.
var AllowedImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

// DataURI is a decoded data URI.
type DataURI struct {
	MIME string
	Data []byte
}

// Parse decodes s, which must have exactly the shape
// `data:<type>/<subtype>;base64,<payload>` with a non-empty payload.
func Parse(s string) (*DataURI, error) {
	if !strings.HasPrefix(s, scheme) {
		return nil, ErrMalformed
	}
	header, payload, ok := strings.Cut(s[len(scheme):], ",")
	if !ok || payload == "" {
		return nil, ErrMalformed
	}
	if !strings.HasSuffix(header, base64Suffix) {
		return nil, ErrMalformed
	}
	mime := strings.ToLower(strings.TrimSuffix(header, base64Suffix))
	if !validMIME(mime) {
		return nil, ErrMalformed
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) == 0 {
		return nil, ErrMalformed
	}
	return &DataURI{MIME: mime, Data: data}, nil
}

// ParseImage parses s and checks that it is one of AllowedImageTypes, that the
// decoded bytes really are that kind of image and that they fit in maxBytes.
// A maxBytes of zero or less disables the size check.
func ParseImage(s string, maxBytes int) (*DataURI, error) {
	d, err := Parse(s)
	if err != nil {
		return nil, err
	}
	if !isAllowedImage(d.MIME) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, d.MIME)
	}
	if maxBytes > 0 && len(d.Data) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(d.Data))
	}
	kind, err := filetype.Match(d.Data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrContentMismatch
	}
	if kind.MIME.Value != d.MIME {
		return nil, fmt.Errorf("%w: declared %s, found %s", ErrContentMismatch, d.MIME, kind.MIME.Value)
	}
	return d, nil
}

// Encode builds a data URI for data with the given MIME type.
func Encode(mime string, data []byte) string {
	return scheme + mime + base64Suffix + "," + base64.StdEncoding.EncodeToString(data)
}

// String re-encodes the data URI.
func (d *DataURI) String() string {
	if d == nil {
		return ""
	}
	return Encode(d.MIME, d.Data)
}

// Base64 returns the payload re-encoded as standard base64.
func (d *DataURI) Base64() string {
	if d == nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(d.Data)
}

func isAllowedImage(mime string) bool {
	for _, t := range AllowedImageTypes {
		if t == mime {
			return true
		}
	}
	return false
}

func validMIME(mime string) bool {
	typ, sub, ok := strings.Cut(mime, "/")
	if !ok || typ == "" || sub == "" {
		return false
	}
	return isToken(typ) && isToken(sub)
}

func isToken(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case strings.ContainsRune("!#$&-^_.+", r):
		default:
			return false
		}
	}
	return true
}
