package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// DefaultBrotliMinLength is the smallest body worth compressing.
const DefaultBrotliMinLength = 1024

// bufferedWriter holds the whole body so the encoding can be chosen once the
// size is known. Listing payloads are small enough to buffer.
type bufferedWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bufferedWriter) Write(data []byte) (int, error) {
	return w.buf.Write(data)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	return w.buf.WriteString(s)
}

// Brotli compresses response bodies of at least minLength bytes for clients
// that accept "br". Smaller bodies pass through unchanged.
func Brotli(minLength int) gin.HandlerFunc {
	if minLength <= 0 {
		minLength = DefaultBrotliMinLength
	}

	return func(c *gin.Context) {
		if !acceptsBrotli(c.Request) {
			c.Next()
			return
		}
		c.Header("Vary", "Accept-Encoding")

		bw := &bufferedWriter{ResponseWriter: c.Writer}
		c.Writer = bw
		c.Next()
		c.Writer = bw.ResponseWriter

		body := bw.buf.Bytes()
		if len(body) < minLength || c.Request.Method == http.MethodHead {
			_, _ = bw.ResponseWriter.Write(body)
			return
		}

		var out bytes.Buffer
		zw := brotli.NewWriterLevel(&out, brotli.DefaultCompression)
		if _, err := zw.Write(body); err != nil {
			_ = c.Error(err)
			_, _ = bw.ResponseWriter.Write(body)
			return
		}
		if err := zw.Close(); err != nil {
			_ = c.Error(err)
			_, _ = bw.ResponseWriter.Write(body)
			return
		}

		h := bw.ResponseWriter.Header()
		h.Set("Content-Encoding", "br")
		h.Set("Content-Length", strconv.Itoa(out.Len()))
		_, _ = bw.ResponseWriter.Write(out.Bytes())
	}
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		name, _, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if strings.EqualFold(name, "br") {
			return true
		}
	}
	return false
}
