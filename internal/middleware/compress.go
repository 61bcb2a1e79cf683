package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// compressibleContentTypes lists the content types worth gzipping. The API
// responses are JSON and the static route serves already-compressed images,
// so anything not listed here passes through untouched.
var compressibleContentTypes = []string{
	"application/json",
	"text/html",
	"text/css",
	"text/plain",
	"text/javascript",
	"application/javascript",
	"image/svg+xml",
}

// Compress gzip-encodes responses for clients that accept it, at the given
// gzip level. The decision is made per response once the handler has set a
// Content-Type, so image downloads skip the encoder entirely.
func Compress(level int) func(http.Handler) http.Handler {
	pool := sync.Pool{
		New: func() any {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz = gzip.NewWriter(io.Discard)
			}
			return gz
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			cw := &compressWriter{ResponseWriter: w, pool: &pool}
			defer cw.close()
			next.ServeHTTP(cw, r)
		})
	}
}

// compressWriter defers the gzip decision until the response starts, when
// the Content-Type is known.
type compressWriter struct {
	http.ResponseWriter
	pool        *sync.Pool
	gz          *gzip.Writer
	decided     bool
	wroteHeader bool
}

func (cw *compressWriter) WriteHeader(code int) {
	cw.decide()
	cw.wroteHeader = true
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressWriter) Write(b []byte) (int, error) {
	if !cw.wroteHeader {
		cw.WriteHeader(http.StatusOK)
	}
	if cw.gz != nil {
		return cw.gz.Write(b)
	}
	return cw.ResponseWriter.Write(b)
}

// decide picks plain or gzip output based on the handler's Content-Type.
// Runs once, before headers go out.
func (cw *compressWriter) decide() {
	if cw.decided {
		return
	}
	cw.decided = true

	if !isCompressible(cw.Header().Get("Content-Type")) {
		return
	}

	cw.Header().Set("Content-Encoding", "gzip")
	cw.Header().Add("Vary", "Accept-Encoding")
	cw.Header().Del("Content-Length")

	gz := cw.pool.Get().(*gzip.Writer)
	gz.Reset(cw.ResponseWriter)
	cw.gz = gz
}

func (cw *compressWriter) close() {
	if cw.gz == nil {
		return
	}
	_ = cw.gz.Close()
	cw.pool.Put(cw.gz)
	cw.gz = nil
}

// isCompressible checks the media type against the compressible list,
// ignoring parameters such as charset.
func isCompressible(contentType string) bool {
	if contentType == "" {
		return false
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	for _, ct := range compressibleContentTypes {
		if strings.EqualFold(contentType, ct) {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(contentType), "text/")
}
