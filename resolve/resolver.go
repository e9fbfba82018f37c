// Package resolve computes the effective configuration of a folder by
// merging its own settings with those of every ancestor, nearest last.
package resolve

import (
	"fmt"

	"restlab/collection"
)

// Source is the consistent snapshot a resolution reads from. Callers
// must not mutate the forest while a resolution is in flight; the
// resolver itself takes no lock and never writes.
type Source interface {
	Folder(id string) (*collection.Folder, bool)
	FolderConfig(id string) (collection.FolderConfig, bool, error)
}

type Resolver struct {
	src Source
}

func New(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve returns the effective configuration of the folder: its own
// base URL when set, otherwise the nearest ancestor's; headers are the
// ancestor chain's in order, with same-key child headers replacing the
// inherited value in place and new keys appended. The result is always
// a fresh copy, so two calls with no intervening writes are deep-equal
// and callers can mutate what they get back.
func (r *Resolver) Resolve(folderID string) (collection.FolderConfig, error) {
	folder, ok := r.src.Folder(folderID)
	if !ok {
		return collection.FolderConfig{}, fmt.Errorf("folder not found: %s", folderID)
	}

	own, _, err := r.src.FolderConfig(folderID)
	if err != nil {
		return collection.FolderConfig{}, err
	}

	if folder.ParentID == "" {
		return own.Clone(), nil
	}

	parent, err := r.Resolve(folder.ParentID)
	if err != nil {
		return collection.FolderConfig{}, err
	}

	merged := collection.FolderConfig{
		BaseURL: parent.BaseURL,
		Headers: MergeHeaders(parent.Headers, own.Headers),
	}
	if own.BaseURL != "" {
		merged.BaseURL = own.BaseURL
	}
	return merged, nil
}

// MergeHeaders layers child headers over the parent list: parent order
// is preserved, a child header whose key already exists (ignoring case)
// replaces that value in place, and unseen keys are appended in child
// order. Both inputs are left untouched.
func MergeHeaders(parent, child []collection.Header) []collection.Header {
	if len(parent) == 0 && len(child) == 0 {
		return nil
	}

	merged := make([]collection.Header, len(parent))
	copy(merged, parent)

	for _, h := range child {
		replaced := false
		for i := range merged {
			if merged[i].EqualKey(h.Key) {
				merged[i].Value = h.Value
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, h)
		}
	}
	return merged
}
