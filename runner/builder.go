package runner

import (
	"net/url"
	"strings"

	"restlab/collection"
)

// ExecutableRequest is a fully resolved request ready for the wire:
// absolute URL, final header list, and either a body string or a
// form-data field list awaiting multipart encoding.
type ExecutableRequest struct {
	Method   string
	URL      string
	Headers  []collection.Header
	Body     string
	FormData []collection.FormDataItem
}

// target holds the URL and header list shared by Build and Curl. The
// two must agree field for field, so the merge lives in one place.
type target struct {
	url     string
	headers []collection.Header
}

// mergeTarget applies the resolved folder config to a request: prefix
// the base URL, concatenate folder headers before request headers, and
// prepend a Content-Type header when the request declares one and the
// list does not already carry it. The order is observable and fixed.
func mergeTarget(req collection.Request, cfg collection.FolderConfig) target {
	t := target{url: req.URL}
	if cfg.BaseURL != "" {
		t.url = cfg.BaseURL + req.URL
	}

	t.headers = append(t.headers, cfg.Headers...)
	t.headers = append(t.headers, req.Headers...)

	if req.ContentType != "" && !hasHeader(t.headers, "Content-Type") {
		t.headers = append([]collection.Header{{Key: "Content-Type", Value: req.ContentType}}, t.headers...)
	}

	return t
}

func hasHeader(headers []collection.Header, key string) bool {
	for _, h := range headers {
		if h.EqualKey(key) {
			return true
		}
	}
	return false
}

// Build combines a request with its resolved folder config. It is pure:
// no network, no store access, deterministic for identical inputs.
func Build(req collection.Request, cfg collection.FolderConfig) ExecutableRequest {
	t := mergeTarget(req, cfg)

	out := ExecutableRequest{
		Method:  req.Method,
		URL:     t.url,
		Headers: t.headers,
	}

	if IsFormContentType(req.ContentType) {
		if HasFileFields(req.FormData) {
			// Multipart encoding needs a generated boundary, so the
			// fields ride along for the executor to encode.
			out.FormData = req.FormData
		} else {
			out.Body = FormBody(req.FormData)
		}
	} else {
		out.Body = StripCommentLines(req.Body)
	}

	return out
}

// IsFormContentType reports whether the content type selects one of the
// form encodings.
func IsFormContentType(contentType string) bool {
	return contentType == "application/x-www-form-urlencoded" ||
		contentType == "multipart/form-data"
}

// HasFileFields reports whether any form item is a file with data.
func HasFileFields(items []collection.FormDataItem) bool {
	for _, item := range items {
		if item.IsFile() {
			return true
		}
	}
	return false
}

// FormBody percent-encodes the text fields as key=value pairs joined
// with &. File items are excluded because their value only mirrors the
// file name; items with a blank key are skipped.
func FormBody(items []collection.FormDataItem) string {
	pairs := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type == "file" {
			continue
		}
		if strings.TrimSpace(item.Key) == "" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(item.Key)+"="+url.QueryEscape(item.Value))
	}
	return strings.Join(pairs, "&")
}

// StripCommentLines removes every line whose trimmed text starts with
// //, a body-authoring convenience for annotated JSON. It is applied to
// every non-form body regardless of content type.
func StripCommentLines(body string) string {
	if !strings.Contains(body, "//") {
		return body
	}
	lines := strings.Split(body, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "//") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
