package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxBodyBytes is the body size limit applied when Decoder.MaxBodyBytes
// is zero.
const DefaultMaxBodyBytes = 10 << 20

var (
	// ErrMalformedBody is returned when the body does not parse as its
	// declared content type.
	ErrMalformedBody = errors.New("codec: malformed body")

	// ErrBodyTooLarge is returned when the body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("codec: body too large")
)

// Blob is a transient handle to a binary body or a multipart file part.
// The URL is resolvable only within the process that produced it.
type Blob struct {
	ID       uuid.UUID
	URL      string
	Type     string
	Filename string
	Data     []byte
}

// String returns the blob URL.
func (b *Blob) String() string { return b.URL }

func newBlob(origin, contentType string, data []byte) *Blob {
	id := uuid.New()

	return &Blob{
		ID:   id,
		URL:  "blob:" + origin + "/" + id.String(),
		Type: contentType,
		Data: data,
	}
}

// Decoder decodes request bodies by their declared content type.
type Decoder struct {
	// MaxBodyBytes caps the number of bytes read from the body.
	// Defaults to DefaultMaxBodyBytes when zero.
	MaxBodyBytes int64
}

// DecodeBody decodes r's body with the default Decoder.
func DecodeBody(r *http.Request, origin string) (any, error) {
	return Decoder{}.Decode(r, origin)
}

// Decode dispatches on the Content-Type header:
//
//   - absent: nil
//   - application/json: the decoded JSON value
//   - application/text, text/html: the raw text
//   - anything containing "form": Fields
//   - otherwise: a *Blob holding the raw bytes
//
// origin is used to build blob URLs.
func (d Decoder) Decode(r *http.Request, origin string) (any, error) {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil, nil
	}

	lower := strings.ToLower(contentType)

	if strings.Contains(lower, "multipart/") && strings.Contains(lower, "form") {
		return d.decodeMultipart(r, contentType, origin)
	}

	body, err := d.readBody(r)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(lower, "application/json"):
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
		}
		return v, nil

	case strings.Contains(lower, "application/text"), strings.Contains(lower, "text/html"):
		return string(body), nil

	case strings.Contains(lower, "form"):
		fields := make(Fields)
		for _, pair := range splitPairs(string(body)) {
			name, value := decodePair(pair)
			fields.add(name, value)
		}
		return fields, nil

	default:
		return newBlob(origin, contentType, body), nil
	}
}

func (d Decoder) limit() int64 {
	if d.MaxBodyBytes > 0 {
		return d.MaxBodyBytes
	}

	return DefaultMaxBodyBytes
}

// readBody drains the body up to the configured limit.
func (d Decoder) readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()

	limit := d.limit()
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
	}

	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}

	return body, nil
}

// decodeMultipart reads every part in order. Text parts are strings,
// file parts are *Blob values.
func (d Decoder) decodeMultipart(r *http.Request, contentType, origin string) (any, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing multipart boundary", ErrMalformedBody)
	}

	body, err := d.readBody(r)
	if err != nil {
		return nil, err
	}

	fields := make(Fields)
	mr := multipart.NewReader(bytes.NewReader(body), boundary)

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedBody, err)
		}

		name := part.FormName()
		if name == "" {
			continue
		}

		if filename := part.FileName(); filename != "" {
			blob := newBlob(origin, part.Header.Get("Content-Type"), data)
			blob.Filename = filename
			fields.add(name, blob)
			continue
		}

		fields.add(name, string(data))
	}

	return fields, nil
}
