package convert

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"restlab/collection"
)

// Postman variables look like {{host}}; imports strip them since no
// substitution engine exists on this side.
var postmanVariablePattern = regexp.MustCompile(`\{\{[^}]+\}\}`)

const defaultCollectionName = "Imported Collection"

// parsePostman imports a Postman v2.1 collection as one root folder.
// When the collection declares a base-URL variable it becomes the root
// folder's baseUrl, and request URLs carrying that prefix are stored
// relative to it.
func parsePostman(data []byte) (*ImportResult, error) {
	var col postmanCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, &ParseError{Err: err}
	}

	result := newImportResult()

	name := col.Info.Name
	if name == "" {
		name = defaultCollectionName
	}
	root := &collection.Folder{
		ID:        collection.NewFolderID(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}

	var baseURL string
	for _, v := range col.Variable {
		if v.Key == "baseUrl" || v.Key == "base_url" || v.Key == "host" {
			baseURL = v.Value
			break
		}
	}
	if baseURL != "" {
		result.FolderConfigs[root.ID] = collection.FolderConfig{BaseURL: baseURL}
	}

	parsePostmanItems(col.Item, root, result, baseURL)

	result.Folders = append(result.Folders, root)
	return result, nil
}

func parsePostmanItems(items []postmanItem, parent *collection.Folder, result *ImportResult, baseURL string) {
	for _, item := range items {
		if len(item.Item) > 0 {
			sub := &collection.Folder{
				ID:        collection.NewFolderID(),
				Name:      item.Name,
				CreatedAt: time.Now().UnixMilli(),
				ParentID:  parent.ID,
			}
			parent.Subfolders = append(parent.Subfolders, sub)
			parsePostmanItems(item.Item, sub, result, baseURL)
		} else if item.Request != nil {
			req := parsePostmanRequest(item, parent.ID, baseURL)
			parent.Requests = append(parent.Requests, req.Summary())
			result.Requests[req.ID] = req
		}
	}
}

func parsePostmanRequest(item postmanItem, folderID, baseURL string) collection.Request {
	pr := item.Request

	rawURL := pr.URL.Raw
	if baseURL != "" && strings.HasPrefix(rawURL, baseURL) {
		rawURL = rawURL[len(baseURL):]
	}
	rawURL = postmanVariablePattern.ReplaceAllString(rawURL, "")

	var headers []collection.Header
	for _, h := range pr.Header {
		if !h.Disabled {
			headers = append(headers, collection.Header{Key: h.Key, Value: h.Value})
		}
	}

	var body, contentType string
	if pr.Body != nil {
		switch pr.Body.Mode {
		case "raw":
			body = pr.Body.Raw
			contentType = sniffRawContentType(body, headers)
		case "urlencoded":
			contentType = "application/x-www-form-urlencoded"
			body = encodeFormPairs(pr.Body.URLEncoded)
		case "formdata":
			// Legacy formdata bodies are imported with an empty field
			// list; the fields cannot be reconstructed from this path.
			contentType = "multipart/form-data"
		}
	}

	method := pr.Method
	if method == "" {
		method = "GET"
	}

	return collection.Request{
		ID:          collection.NewRequestID(),
		Name:        item.Name,
		FolderID:    folderID,
		Method:      method,
		URL:         rawURL,
		Headers:     headers,
		Body:        body,
		ContentType: contentType,
	}
}

// sniffRawContentType prefers an explicit Content-Type header, then
// guesses JSON from the body's first character.
func sniffRawContentType(body string, headers []collection.Header) string {
	for _, h := range headers {
		if h.EqualKey("Content-Type") {
			return h.Value
		}
	}
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "application/json"
	}
	return ""
}

func encodeFormPairs(params []postmanParam) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		pairs = append(pairs, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(pairs, "&")
}

// exportPostman renders a folder subtree as a Postman v2.1 collection.
// The root folder's baseUrl, when set, is emitted as a collection
// variable; stored URLs go out as-is (possibly relative to it).
func exportPostman(subtree *collection.Folder, src ConfigSource) (interface{}, error) {
	col := postmanCollection{
		Info: postmanInfo{
			Name:      subtree.Name,
			Schema:    postmanSchema,
			PostmanID: subtree.ID,
		},
		Item: []postmanItem{},
	}

	if cfg, ok, err := src.FolderConfig(subtree.ID); err != nil {
		return nil, err
	} else if ok && cfg.BaseURL != "" {
		col.Variable = []postmanVariable{{Key: "baseUrl", Value: cfg.BaseURL, Type: "string"}}
	}

	items, err := postmanItemsForFolder(subtree, src)
	if err != nil {
		return nil, err
	}
	col.Item = items

	return col, nil
}

func postmanItemsForFolder(folder *collection.Folder, src ConfigSource) ([]postmanItem, error) {
	items := []postmanItem{}

	for _, sub := range folder.Subfolders {
		nested, err := postmanItemsForFolder(sub, src)
		if err != nil {
			return nil, err
		}
		items = append(items, postmanItem{Name: sub.Name, Item: nested})
	}

	for _, req := range folder.Requests {
		detail, _, err := src.RequestConfig(req.ID)
		if err != nil {
			return nil, err
		}

		method := detail.Method
		if method == "" {
			method = req.Method
		}
		if method == "" {
			method = "GET"
		}

		header := make([]postmanHeader, 0, len(detail.Headers))
		for _, h := range detail.Headers {
			header = append(header, postmanHeader{Key: h.Key, Value: h.Value, Type: "text"})
		}

		item := postmanItem{
			Name: req.Name,
			Request: &postmanRequest{
				Method: method,
				Header: header,
				URL:    postmanURL{Raw: detail.URL},
			},
		}

		if detail.Body != "" {
			item.Request.Body = &postmanBody{
				Mode: "raw",
				Raw:  detail.Body,
				Options: &postmanBodyOptions{
					Raw: &postmanRawOptions{Language: postmanLanguage(detail.ContentType)},
				},
			}
		}

		items = append(items, item)
	}

	return items, nil
}

func postmanLanguage(contentType string) string {
	switch contentType {
	case "application/xml", "xml":
		return "xml"
	case "text/plain", "text":
		return "text"
	case "text/html", "html":
		return "html"
	default:
		return "json"
	}
}
