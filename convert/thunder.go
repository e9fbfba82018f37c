package convert

import (
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"restlab/collection"
)

// parseThunder imports a Thunder Client collection. Root-level requests
// land directly in the root folder; the folders array nests the same
// way Postman items do.
func parseThunder(data []byte) (*ImportResult, error) {
	var col thunderCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, &ParseError{Err: err}
	}

	result := newImportResult()

	name := col.CollectionName
	if name == "" {
		name = col.ColName
	}
	if name == "" {
		name = defaultCollectionName
	}
	root := &collection.Folder{
		ID:        collection.NewFolderID(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
	}

	for _, tr := range col.Requests {
		req := parseThunderRequest(tr, root.ID)
		root.Requests = append(root.Requests, req.Summary())
		result.Requests[req.ID] = req
	}
	parseThunderFolders(col.Folders, root, result)

	result.Folders = append(result.Folders, root)
	return result, nil
}

func parseThunderFolders(folders []thunderFolder, parent *collection.Folder, result *ImportResult) {
	for _, tf := range folders {
		sub := &collection.Folder{
			ID:        collection.NewFolderID(),
			Name:      tf.Name,
			CreatedAt: time.Now().UnixMilli(),
			ParentID:  parent.ID,
		}
		for _, tr := range tf.Requests {
			req := parseThunderRequest(tr, sub.ID)
			sub.Requests = append(sub.Requests, req.Summary())
			result.Requests[req.ID] = req
		}
		parseThunderFolders(tf.Folders, sub, result)
		parent.Subfolders = append(parent.Subfolders, sub)
	}
}

func parseThunderRequest(tr thunderRequest, folderID string) collection.Request {
	var headers []collection.Header
	for _, h := range tr.Headers {
		headers = append(headers, collection.Header{Key: h.Name, Value: h.Value})
	}

	var body, contentType string
	if tr.Body != nil {
		switch tr.Body.Type {
		case "json":
			body = tr.Body.Raw
			contentType = "application/json"
		case "text":
			body = tr.Body.Raw
			contentType = "text/plain"
		case "formencoded":
			contentType = "application/x-www-form-urlencoded"
			pairs := make([]string, 0, len(tr.Body.Form))
			for _, p := range tr.Body.Form {
				pairs = append(pairs, url.QueryEscape(p.Name)+"="+url.QueryEscape(p.Value))
			}
			body = strings.Join(pairs, "&")
		case "formdata":
			// Same legacy limitation as Postman: the field list is not
			// reconstructed from this path.
			contentType = "multipart/form-data"
		}
	}

	method := tr.Method
	if method == "" {
		method = "GET"
	}

	return collection.Request{
		ID:          collection.NewRequestID(),
		Name:        tr.Name,
		FolderID:    folderID,
		Method:      method,
		URL:         tr.URL,
		Headers:     headers,
		Body:        body,
		ContentType: contentType,
	}
}

// exportThunder renders a folder subtree in Thunder Client's schema.
// Headers are remapped from key/value to name/value on the way out.
func exportThunder(subtree *collection.Folder, src ConfigSource) (interface{}, error) {
	col := thunderCollection{
		CollectionName: subtree.Name,
		Requests:       []thunderRequest{},
		Folders:        []thunderFolder{},
	}

	requests, folders, err := thunderEntriesForFolder(subtree, src)
	if err != nil {
		return nil, err
	}
	col.Requests = requests
	col.Folders = folders

	return col, nil
}

func thunderEntriesForFolder(folder *collection.Folder, src ConfigSource) ([]thunderRequest, []thunderFolder, error) {
	requests := []thunderRequest{}
	folders := []thunderFolder{}

	for _, sub := range folder.Subfolders {
		subRequests, subFolders, err := thunderEntriesForFolder(sub, src)
		if err != nil {
			return nil, nil, err
		}
		folders = append(folders, thunderFolder{
			Name:     sub.Name,
			Requests: subRequests,
			Folders:  subFolders,
		})
	}

	for _, req := range folder.Requests {
		detail, _, err := src.RequestConfig(req.ID)
		if err != nil {
			return nil, nil, err
		}

		method := detail.Method
		if method == "" {
			method = req.Method
		}
		if method == "" {
			method = "GET"
		}

		tr := thunderRequest{
			Name:   req.Name,
			Method: method,
			URL:    detail.URL,
		}
		for _, h := range detail.Headers {
			tr.Headers = append(tr.Headers, thunderHeader{Name: h.Key, Value: h.Value})
		}
		if detail.Body != "" {
			bodyType := detail.ContentType
			if bodyType == "" {
				bodyType = "json"
			}
			tr.Body = &thunderBody{Type: bodyType, Raw: detail.Body}
		}

		requests = append(requests, tr)
	}

	return requests, folders, nil
}
