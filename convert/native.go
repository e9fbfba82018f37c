package convert

import (
	"encoding/json"
	"time"

	"restlab/collection"
)

// parseNative imports a RESTLab export: a structural copy of the stored
// tree. Every folder and request id is replaced with a freshly minted
// one, and the side tables riding along in the file are re-keyed through
// the same id mapping.
func parseNative(data []byte) (*ImportResult, error) {
	var col nativeCollection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, &ParseError{Err: err}
	}
	if col.Folder == nil {
		return nil, &FormatMismatchError{Format: FormatNative}
	}

	result := newImportResult()
	root := remapNativeFolder(col.Folder, "", &col, result)
	result.Folders = append(result.Folders, root)
	return result, nil
}

func remapNativeFolder(folder *collection.Folder, newParentID string, col *nativeCollection, result *ImportResult) *collection.Folder {
	newID := collection.NewFolderID()

	out := &collection.Folder{
		ID:        newID,
		Name:      folder.Name,
		CreatedAt: time.Now().UnixMilli(),
		ParentID:  newParentID,
	}

	for _, req := range folder.Requests {
		newReqID := collection.NewRequestID()
		out.Requests = append(out.Requests, collection.Request{
			ID:       newReqID,
			Name:     req.Name,
			FolderID: newID,
			Method:   req.Method,
		})

		// A request without a stored config has no detail to carry over.
		if detail, ok := col.RequestConfigs[req.ID]; ok {
			detail.ID = newReqID
			detail.Name = req.Name
			detail.FolderID = newID
			if detail.Method == "" {
				detail.Method = req.Method
			}
			result.Requests[newReqID] = detail
		}
	}

	for _, sub := range folder.Subfolders {
		out.Subfolders = append(out.Subfolders, remapNativeFolder(sub, newID, col, result))
	}

	if cfg, ok := col.FolderConfigs[folder.ID]; ok {
		result.FolderConfigs[newID] = cfg
	}

	return out
}

// exportNative renders a folder subtree in RESTLab's own schema: the
// tree as stored plus every folder and request side-table entry found
// beneath it, collected depth-first.
func exportNative(subtree *collection.Folder, src ConfigSource) (interface{}, error) {
	col := nativeCollection{
		Version:        nativeVersion,
		ExportedAt:     time.Now().UTC().Format(time.RFC3339),
		Type:           nativeType,
		Folder:         subtree,
		FolderConfigs:  make(map[string]collection.FolderConfig),
		RequestConfigs: make(map[string]collection.Request),
	}

	var walkErr error
	collection.Walk(subtree, func(fl *collection.Folder) {
		if walkErr != nil {
			return
		}
		if cfg, ok, err := src.FolderConfig(fl.ID); err != nil {
			walkErr = err
		} else if ok {
			col.FolderConfigs[fl.ID] = cfg
		}
		for _, req := range fl.Requests {
			detail, ok, err := src.RequestConfig(req.ID)
			if err != nil {
				walkErr = err
				return
			}
			if ok {
				col.RequestConfigs[req.ID] = detail
			}
		}
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return col, nil
}
