package collection

import (
	"fmt"
	"time"
)

// Forest holds every collection tree plus an id index over all folders
// and requests. Folders own their subtrees exclusively; the index exists
// so lookups and reparent checks never walk the whole forest.
type Forest struct {
	roots         []*Folder
	folders       map[string]*Folder
	requestFolder map[string]string // request id -> owning folder id
}

func NewForest() *Forest {
	return &Forest{
		folders:       make(map[string]*Folder),
		requestFolder: make(map[string]string),
	}
}

// Roots returns the top-level folders in insertion order.
func (f *Forest) Roots() []*Folder {
	return f.roots
}

// Folder returns the folder with the given id.
func (f *Forest) Folder(id string) (*Folder, bool) {
	folder, ok := f.folders[id]
	return folder, ok
}

// Request returns the embedded request summary with the given id.
func (f *Forest) Request(id string) (Request, bool) {
	folderID, ok := f.requestFolder[id]
	if !ok {
		return Request{}, false
	}
	folder := f.folders[folderID]
	for _, req := range folder.Requests {
		if req.ID == id {
			return req, true
		}
	}
	return Request{}, false
}

// FolderOfRequest returns the id of the folder owning the request.
func (f *Forest) FolderOfRequest(requestID string) (string, bool) {
	folderID, ok := f.requestFolder[requestID]
	return folderID, ok
}

// AddFolder attaches a folder subtree to the forest. The folder becomes
// a root when its ParentID is empty; otherwise the parent must already
// exist. Every nested folder and request id must be new to the forest.
func (f *Forest) AddFolder(folder *Folder) error {
	if err := f.checkSubtreeIDs(folder); err != nil {
		return err
	}

	if folder.ParentID == "" {
		f.roots = append(f.roots, folder)
	} else {
		parent, ok := f.folders[folder.ParentID]
		if !ok {
			return fmt.Errorf("parent folder not found: %s", folder.ParentID)
		}
		parent.Subfolders = append(parent.Subfolders, folder)
	}

	f.indexSubtree(folder)
	return nil
}

// CreateFolder makes a new empty folder under parentID (or a new root
// when parentID is empty) and attaches it.
func (f *Forest) CreateFolder(name, parentID string) (*Folder, error) {
	folder := &Folder{
		ID:        NewFolderID(),
		Name:      name,
		CreatedAt: time.Now().UnixMilli(),
		ParentID:  parentID,
	}
	if err := f.AddFolder(folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// CreateRequest adds a new request summary to the given folder.
func (f *Forest) CreateRequest(folderID, name, method string) (Request, error) {
	folder, ok := f.folders[folderID]
	if !ok {
		return Request{}, fmt.Errorf("folder not found: %s", folderID)
	}
	req := Request{
		ID:       NewRequestID(),
		Name:     name,
		FolderID: folderID,
		Method:   method,
	}
	folder.Requests = append(folder.Requests, req)
	f.requestFolder[req.ID] = folderID
	return req, nil
}

func (f *Forest) RenameFolder(id, name string) error {
	folder, ok := f.folders[id]
	if !ok {
		return fmt.Errorf("folder not found: %s", id)
	}
	folder.Name = name
	return nil
}

func (f *Forest) RenameRequest(id, name string) error {
	folderID, ok := f.requestFolder[id]
	if !ok {
		return fmt.Errorf("request not found: %s", id)
	}
	folder := f.folders[folderID]
	for i := range folder.Requests {
		if folder.Requests[i].ID == id {
			folder.Requests[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("request not found: %s", id)
}

// UpdateRequestMethod refreshes the method shown on the tree entry after
// the stored detail changed.
func (f *Forest) UpdateRequestMethod(id, method string) error {
	folderID, ok := f.requestFolder[id]
	if !ok {
		return fmt.Errorf("request not found: %s", id)
	}
	folder := f.folders[folderID]
	for i := range folder.Requests {
		if folder.Requests[i].ID == id {
			folder.Requests[i].Method = method
			return nil
		}
	}
	return fmt.Errorf("request not found: %s", id)
}

// MoveRequest reparents a request into the target folder, keeping its id.
func (f *Forest) MoveRequest(requestID, targetFolderID string) error {
	target, ok := f.folders[targetFolderID]
	if !ok {
		return fmt.Errorf("target folder not found: %s", targetFolderID)
	}
	sourceID, ok := f.requestFolder[requestID]
	if !ok {
		return fmt.Errorf("request not found: %s", requestID)
	}
	if sourceID == targetFolderID {
		return nil
	}

	source := f.folders[sourceID]
	var moved Request
	for i, req := range source.Requests {
		if req.ID == requestID {
			moved = req
			source.Requests = append(source.Requests[:i], source.Requests[i+1:]...)
			break
		}
	}

	moved.FolderID = targetFolderID
	target.Requests = append(target.Requests, moved)
	f.requestFolder[requestID] = targetFolderID
	return nil
}

// MoveFolder reparents a folder subtree. Moving a folder into itself or
// into one of its own descendants is rejected; this is the only place a
// cycle could be introduced, so it is the only place checked.
func (f *Forest) MoveFolder(folderID, newParentID string) error {
	folder, ok := f.folders[folderID]
	if !ok {
		return fmt.Errorf("folder not found: %s", folderID)
	}
	if newParentID != "" {
		if _, ok := f.folders[newParentID]; !ok {
			return fmt.Errorf("target folder not found: %s", newParentID)
		}
		for id := newParentID; id != ""; id = f.folders[id].ParentID {
			if id == folderID {
				return fmt.Errorf("cannot move folder %q into its own subtree", folder.Name)
			}
		}
	}

	f.detach(folder)
	folder.ParentID = newParentID
	if newParentID == "" {
		f.roots = append(f.roots, folder)
	} else {
		parent := f.folders[newParentID]
		parent.Subfolders = append(parent.Subfolders, folder)
	}
	return nil
}

// DeleteRequest removes a request from its folder.
func (f *Forest) DeleteRequest(id string) error {
	folderID, ok := f.requestFolder[id]
	if !ok {
		return fmt.Errorf("request not found: %s", id)
	}
	folder := f.folders[folderID]
	for i, req := range folder.Requests {
		if req.ID == id {
			folder.Requests = append(folder.Requests[:i], folder.Requests[i+1:]...)
			break
		}
	}
	delete(f.requestFolder, id)
	return nil
}

// DeleteFolder removes a folder and everything beneath it, returning the
// ids of all removed folders and requests so the caller can purge their
// side-table entries.
func (f *Forest) DeleteFolder(id string) (folderIDs, requestIDs []string, err error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, nil, fmt.Errorf("folder not found: %s", id)
	}

	f.detach(folder)
	Walk(folder, func(fl *Folder) {
		folderIDs = append(folderIDs, fl.ID)
		delete(f.folders, fl.ID)
		for _, req := range fl.Requests {
			requestIDs = append(requestIDs, req.ID)
			delete(f.requestFolder, req.ID)
		}
	})
	return folderIDs, requestIDs, nil
}

// DuplicateRequest copies a request summary into the same folder under a
// fresh id. The caller copies the stored detail across ids.
func (f *Forest) DuplicateRequest(id string) (Request, error) {
	original, ok := f.Request(id)
	if !ok {
		return Request{}, fmt.Errorf("request not found: %s", id)
	}
	dup := Request{
		ID:       NewRequestID(),
		Name:     original.Name + " (copy)",
		FolderID: original.FolderID,
		Method:   original.Method,
	}
	folder := f.folders[original.FolderID]
	folder.Requests = append(folder.Requests, dup)
	f.requestFolder[dup.ID] = original.FolderID
	return dup, nil
}

// DuplicateFolder deep-copies a folder subtree next to the original with
// fresh ids throughout. The returned map carries old id -> new id for
// every folder and request in the subtree so side-table entries can be
// copied across.
func (f *Forest) DuplicateFolder(id string) (*Folder, map[string]string, error) {
	original, ok := f.folders[id]
	if !ok {
		return nil, nil, fmt.Errorf("folder not found: %s", id)
	}

	idMap := make(map[string]string)
	dup := RemapSubtree(original, original.ParentID, idMap)
	dup.Name = original.Name + " (copy)"

	if err := f.AddFolder(dup); err != nil {
		return nil, nil, err
	}
	return dup, idMap, nil
}

// Subtree returns a detached deep copy of the folder, suitable for
// serialization without exposing forest internals.
func (f *Forest) Subtree(id string) (*Folder, bool) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, false
	}
	return copyFolder(folder), true
}

// Walk visits the folder and every descendant depth-first.
func Walk(folder *Folder, fn func(*Folder)) {
	fn(folder)
	for _, sub := range folder.Subfolders {
		Walk(sub, fn)
	}
}

// RemapSubtree deep-copies a folder tree, minting a fresh id for every
// folder and request and recording old id -> new id in idMap. Used by
// duplication and by native import, which must never reuse source ids.
func RemapSubtree(folder *Folder, newParentID string, idMap map[string]string) *Folder {
	newID := NewFolderID()
	idMap[folder.ID] = newID

	out := &Folder{
		ID:        newID,
		Name:      folder.Name,
		CreatedAt: time.Now().UnixMilli(),
		ParentID:  newParentID,
	}
	for _, req := range folder.Requests {
		newReqID := NewRequestID()
		idMap[req.ID] = newReqID
		out.Requests = append(out.Requests, Request{
			ID:       newReqID,
			Name:     req.Name,
			FolderID: newID,
			Method:   req.Method,
		})
	}
	for _, sub := range folder.Subfolders {
		out.Subfolders = append(out.Subfolders, RemapSubtree(sub, newID, idMap))
	}
	return out
}

func copyFolder(folder *Folder) *Folder {
	out := &Folder{
		ID:        folder.ID,
		Name:      folder.Name,
		CreatedAt: folder.CreatedAt,
		ParentID:  folder.ParentID,
	}
	if folder.Requests != nil {
		out.Requests = make([]Request, len(folder.Requests))
		copy(out.Requests, folder.Requests)
	}
	for _, sub := range folder.Subfolders {
		out.Subfolders = append(out.Subfolders, copyFolder(sub))
	}
	return out
}

func (f *Forest) detach(folder *Folder) {
	if folder.ParentID == "" {
		for i, root := range f.roots {
			if root.ID == folder.ID {
				f.roots = append(f.roots[:i], f.roots[i+1:]...)
				return
			}
		}
		return
	}
	parent, ok := f.folders[folder.ParentID]
	if !ok {
		return
	}
	for i, sub := range parent.Subfolders {
		if sub.ID == folder.ID {
			parent.Subfolders = append(parent.Subfolders[:i], parent.Subfolders[i+1:]...)
			return
		}
	}
}

func (f *Forest) checkSubtreeIDs(folder *Folder) error {
	var err error
	Walk(folder, func(fl *Folder) {
		if err != nil {
			return
		}
		if _, exists := f.folders[fl.ID]; exists {
			err = fmt.Errorf("duplicate folder id: %s", fl.ID)
			return
		}
		for _, req := range fl.Requests {
			if _, exists := f.requestFolder[req.ID]; exists {
				err = fmt.Errorf("duplicate request id: %s", req.ID)
				return
			}
		}
	})
	return err
}

func (f *Forest) indexSubtree(folder *Folder) {
	Walk(folder, func(fl *Folder) {
		f.folders[fl.ID] = fl
		for _, req := range fl.Requests {
			f.requestFolder[req.ID] = fl.ID
		}
	})
}
