package collection

import "strings"

// Header is a single HTTP header pair. Key comparisons are
// case-insensitive; storage preserves the original casing.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EqualKey reports whether the header key matches other, ignoring case.
func (h Header) EqualKey(other string) bool {
	return strings.EqualFold(h.Key, other)
}

// FormDataItem is one field of a form-encoded request body. Text items
// ignore FileName/FileData; a file item's Value duplicates FileName for
// display only.
type FormDataItem struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type"` // "text" or "file"
	FileName string `json:"fileName,omitempty"`
	FileData string `json:"fileData,omitempty"` // base64
}

// IsFile reports whether the item is a file field carrying data.
func (i FormDataItem) IsFile() bool {
	return i.Type == "file" && i.FileData != ""
}

// Request is a single API request. The tree embeds requests with only
// the summary fields (ID, Name, FolderID, Method) populated; the full
// detail lives in the request side table under the same id.
type Request struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	FolderID    string         `json:"folderId"`
	Method      string         `json:"method"`
	URL         string         `json:"url,omitempty"`
	Headers     []Header       `json:"headers,omitempty"`
	Body        string         `json:"body,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	FormData    []FormDataItem `json:"formData,omitempty"`
}

// Summary returns a copy carrying only the fields the tree embeds.
func (r Request) Summary() Request {
	return Request{
		ID:       r.ID,
		Name:     r.Name,
		FolderID: r.FolderID,
		Method:   r.Method,
	}
}

// Folder is one node of the collection forest. A folder owns its
// requests and subfolders exclusively.
type Folder struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  int64     `json:"createdAt"`
	ParentID   string    `json:"parentId,omitempty"`
	Requests   []Request `json:"requests"`
	Subfolders []*Folder `json:"subfolders"`
}

// FolderConfig is the side-table entry carrying per-folder settings.
// It is keyed by folder id in the store, never embedded in the Folder.
type FolderConfig struct {
	BaseURL string   `json:"baseUrl,omitempty"`
	Headers []Header `json:"headers,omitempty"`
}

// Clone returns a deep copy so merged configs never alias stored state.
func (c FolderConfig) Clone() FolderConfig {
	out := FolderConfig{BaseURL: c.BaseURL}
	if c.Headers != nil {
		out.Headers = make([]Header, len(c.Headers))
		copy(out.Headers, c.Headers)
	}
	return out
}

// ResponseData is the uniform result of executing a request. A transport
// failure is reported as Status 0 with the classified message in Data.
type ResponseData struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`
	Data       string            `json:"data"`
	Time       int64             `json:"time"` // milliseconds
	Size       int64             `json:"size"` // bytes
}
