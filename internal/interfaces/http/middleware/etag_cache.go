package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bodyCacheWriter is a custom gin.ResponseWriter that intercepts and buffers the response body.
// This allows the ETag middleware to hash the body before it's sent to the client.
// bodyCacheWriter 拦截并缓冲响应正文。
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCacheWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCacheWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETag implements conditional GETs for read endpoints such as the score
// dashboard. The tag is a SHA-256 of the envelope's data field, so the
// per-response timestamp and trace ID do not defeat revalidation. A matching
// If-None-Match yields 304 Not Modified. Responses are marked private because
// every payload is tenant data.
// ETag 为读取接口提供基于 ETag 的条件请求。
func ETag() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bcw := &bodyCacheWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = bcw
		c.Next()
		c.Writer = bcw.ResponseWriter

		body := bcw.body.Bytes()
		if c.Writer.Status() != http.StatusOK || len(body) == 0 {
			_, _ = bcw.ResponseWriter.Write(body)
			return
		}

		etag := fmt.Sprintf(`"%x"`, sha256.Sum256(stablePart(body)))
		c.Header("ETag", etag)
		c.Header("Cache-Control", "private, no-cache")

		if match := c.GetHeader("If-None-Match"); match == etag {
			bcw.ResponseWriter.WriteHeader(http.StatusNotModified)
			bcw.ResponseWriter.WriteHeaderNow()
			return
		}
		_, _ = bcw.ResponseWriter.Write(body)
	}
}

// stablePart returns the "data" member of an API envelope, or the whole body
// when it is not an envelope.
func stablePart(body []byte) []byte {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return body
	}
	return envelope.Data
}
