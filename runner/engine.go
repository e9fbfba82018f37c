package runner

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"restlab/collection"
)

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 30 * time.Second

// Engine performs the network round trip for executable requests. One
// engine is safe for concurrent use; each call is independent.
type Engine struct {
	client *http.Client

	// UserAgent is sent when the request carries no User-Agent header.
	UserAgent string
}

func NewEngine(timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		client: &http.Client{Timeout: timeout},
	}
}

// Execute runs one request and always returns a ResponseData. Transport
// failures come back as Status 0 with a classified message in Data, so
// callers see one uniform shape for success and failure. The context
// cancels the in-flight call.
func (e *Engine) Execute(ctx context.Context, req ExecutableRequest) collection.ResponseData {
	start := time.Now()

	body := req.Body
	headers := req.Headers

	if len(req.FormData) > 0 {
		boundary := multipartBoundary()
		body = encodeMultipart(req.FormData, boundary)
		headers = setHeader(headers, "Content-Type", "multipart/form-data; boundary="+boundary)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, strings.NewReader(body))
	if err != nil {
		return errorResponse(err, time.Since(start))
	}
	for _, h := range headers {
		if h.Key != "" {
			httpReq.Header.Set(h.Key, h.Value)
		}
	}
	if e.UserAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", e.UserAgent)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return errorResponse(err, time.Since(start))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errorResponse(err, time.Since(start))
	}

	respHeaders := make(map[string]string, len(resp.Header))
	for key, values := range resp.Header {
		respHeaders[key] = strings.Join(values, ", ")
	}

	return collection.ResponseData{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    respHeaders,
		Data:       string(data),
		Time:       time.Since(start).Milliseconds(),
		Size:       int64(len(data)),
	}
}

func statusText(resp *http.Response) string {
	// Status lines look like "200 OK"; keep only the reason phrase.
	prefix := fmt.Sprintf("%d ", resp.StatusCode)
	return strings.TrimPrefix(resp.Status, prefix)
}

func errorResponse(err error, elapsed time.Duration) collection.ResponseData {
	return collection.ResponseData{
		Status:     0,
		StatusText: "Error",
		Headers:    map[string]string{},
		Data:       classifyError(err),
		Time:       elapsed.Milliseconds(),
	}
}

func multipartBoundary() string {
	id := uuid.New()
	return fmt.Sprintf("----RESTLabBoundary%x", id[:])
}

// encodeMultipart builds a multipart/form-data body by hand so the part
// layout stays fixed: one part per field, file data base64-decoded,
// closed with the terminator line.
func encodeMultipart(items []collection.FormDataItem, boundary string) string {
	var buf bytes.Buffer
	for _, item := range items {
		if strings.TrimSpace(item.Key) == "" {
			continue
		}
		if item.IsFile() {
			name := item.FileName
			if name == "" {
				name = "file"
			}
			fmt.Fprintf(&buf, "--%s\r\n", boundary)
			fmt.Fprintf(&buf, "Content-Disposition: form-data; name=%q; filename=%q\r\n", item.Key, name)
			buf.WriteString("Content-Type: application/octet-stream\r\n\r\n")
			raw, err := base64.StdEncoding.DecodeString(item.FileData)
			if err != nil {
				// Undecodable data goes through verbatim rather than
				// aborting the whole request.
				buf.WriteString(item.FileData)
			} else {
				buf.Write(raw)
			}
			buf.WriteString("\r\n")
		} else {
			fmt.Fprintf(&buf, "--%s\r\n", boundary)
			fmt.Fprintf(&buf, "Content-Disposition: form-data; name=%q\r\n\r\n", item.Key)
			buf.WriteString(item.Value)
			buf.WriteString("\r\n")
		}
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.String()
}

// setHeader replaces the first case-insensitive match in place, or
// appends when the key is absent. It copies before mutating.
func setHeader(headers []collection.Header, key, value string) []collection.Header {
	out := make([]collection.Header, len(headers))
	copy(out, headers)
	for i := range out {
		if out[i].EqualKey(key) {
			out[i].Value = value
			return out
		}
	}
	return append(out, collection.Header{Key: key, Value: value})
}
