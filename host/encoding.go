package host

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// ErrInvalidCompressionLevel is returned when Options.GzipLevel is outside
// the valid compression level range.
var ErrInvalidCompressionLevel = errors.New("host: invalid compression level")

// compressedContentTypes contains content type prefixes and exact types that
// are already compressed and are sent as is.
var compressedContentTypes = []string{
	"image/",
	"video/",
	"audio/",
	"application/zip",
	"application/gzip",
	"application/x-gzip",
	"application/x-bzip2",
	"application/x-xz",
	"application/zstd",
	"application/x-7z-compressed",
	"application/x-rar-compressed",
}

func isCompressedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))

	for _, prefix := range compressedContentTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}

	return false
}

// acceptsGzip reports whether the Accept-Encoding header allows gzip with a
// positive quality, either by name or through "*".
func acceptsGzip(r *http.Request) bool {
	gzipQ, wildQ := -1.0, -1.0

	for part := range strings.SplitSeq(r.Header.Get("Accept-Encoding"), ",") {
		name, quality := parseEncoding(strings.TrimSpace(part))
		q := parseQuality(quality)

		switch strings.ToLower(name) {
		case "gzip", "x-gzip":
			gzipQ = q
		case "*":
			wildQ = q
		}
	}

	if gzipQ < 0 {
		gzipQ = wildQ
	}

	return gzipQ > 0
}

// parseQuality converts a quality string to a float64.
// An empty string defaults to 1.0 (implicit full quality, RFC 9110 section 12.4.2).
func parseQuality(s string) float64 {
	if s == "" {
		return 1.0
	}

	q, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return q
}

// parseEncoding splits an encoding token into the encoding name and quality
// value. For "gzip;q=0.8" it returns ("gzip", "0.8").
func parseEncoding(s string) (encoding, quality string) {
	encoding, params, ok := strings.Cut(s, ";")
	if !ok {
		return strings.TrimSpace(encoding), ""
	}

	params = strings.TrimSpace(params)
	if key, val, found := strings.Cut(params, "="); found && strings.TrimSpace(key) == "q" {
		return strings.TrimSpace(encoding), strings.TrimSpace(val)
	}

	return strings.TrimSpace(encoding), ""
}

// gzipper compresses bodies with pooled writers.
type gzipper struct {
	pool sync.Pool
}

func newGzipper(level int) (*gzipper, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}

	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return nil, ErrInvalidCompressionLevel
	}

	g := &gzipper{}
	g.pool.New = func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}

	return g, nil
}

func (g *gzipper) compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := g.pool.Get().(*gzip.Writer)
	defer g.pool.Put(w)
	w.Reset(&buf)

	if _, err := w.Write(body); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
