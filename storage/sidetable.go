package storage

import (
	"encoding/json"
	"fmt"

	"restlab/collection"
)

// Store key conventions. Folder and request configs are side tables
// keyed by entity id; the forest itself lives under a single key.
const (
	forestKey           = "restlab.folders"
	folderConfigPrefix  = "restlab.folder."
	requestConfigPrefix = "restlab.request."
)

func FolderConfigKey(folderID string) string {
	return folderConfigPrefix + folderID
}

func RequestConfigKey(requestID string) string {
	return requestConfigPrefix + requestID
}

// SideTables wraps a Store with typed accessors for the entities the
// core reads and writes.
type SideTables struct {
	store Store
}

func NewSideTables(store Store) *SideTables {
	return &SideTables{store: store}
}

func (s *SideTables) FolderConfig(folderID string) (collection.FolderConfig, bool, error) {
	var cfg collection.FolderConfig
	raw, ok, err := s.store.Get(FolderConfigKey(folderID))
	if err != nil || !ok {
		return cfg, false, err
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, false, fmt.Errorf("failed to decode folder config %s: %w", folderID, err)
	}
	return cfg, true, nil
}

func (s *SideTables) SaveFolderConfig(folderID string, cfg collection.FolderConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode folder config: %w", err)
	}
	return s.store.Update(FolderConfigKey(folderID), string(raw))
}

func (s *SideTables) DeleteFolderConfig(folderID string) error {
	return s.store.Delete(FolderConfigKey(folderID))
}

func (s *SideTables) RequestConfig(requestID string) (collection.Request, bool, error) {
	var req collection.Request
	raw, ok, err := s.store.Get(RequestConfigKey(requestID))
	if err != nil || !ok {
		return req, false, err
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return req, false, fmt.Errorf("failed to decode request config %s: %w", requestID, err)
	}
	return req, true, nil
}

func (s *SideTables) SaveRequestConfig(req collection.Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request config: %w", err)
	}
	return s.store.Update(RequestConfigKey(req.ID), string(raw))
}

func (s *SideTables) DeleteRequestConfig(requestID string) error {
	return s.store.Delete(RequestConfigKey(requestID))
}

// LoadForest reads the stored folder trees and rebuilds the indexed
// forest. An empty store yields an empty forest.
func (s *SideTables) LoadForest() (*collection.Forest, error) {
	forest := collection.NewForest()

	raw, ok, err := s.store.Get(forestKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return forest, nil
	}

	var roots []*collection.Folder
	if err := json.Unmarshal([]byte(raw), &roots); err != nil {
		return nil, fmt.Errorf("failed to decode stored folders: %w", err)
	}
	for _, root := range roots {
		if err := forest.AddFolder(root); err != nil {
			return nil, fmt.Errorf("failed to rebuild forest: %w", err)
		}
	}
	return forest, nil
}

func (s *SideTables) SaveForest(forest *collection.Forest) error {
	raw, err := json.Marshal(forest.Roots())
	if err != nil {
		return fmt.Errorf("failed to encode folders: %w", err)
	}
	return s.store.Update(forestKey, string(raw))
}

// MergeImport attaches freshly imported trees to the forest and writes
// their side-table entries and the updated forest in one pass. The
// folders carry newly minted ids, so collisions mean a caller bug and
// fail the whole merge.
func (s *SideTables) MergeImport(forest *collection.Forest, folders []*collection.Folder, requests map[string]collection.Request, folderConfigs map[string]collection.FolderConfig) error {
	for _, root := range folders {
		if err := forest.AddFolder(root); err != nil {
			return fmt.Errorf("failed to merge imported folder %s: %w", root.ID, err)
		}
	}
	for _, req := range requests {
		if err := s.SaveRequestConfig(req); err != nil {
			return err
		}
	}
	for id, cfg := range folderConfigs {
		if err := s.SaveFolderConfig(id, cfg); err != nil {
			return err
		}
	}
	return s.SaveForest(forest)
}

// CopyConfigs duplicates side-table entries across an old id -> new id
// map, as produced by Forest.DuplicateFolder. Entities without a stored
// entry are skipped; the duplicate starts bare, like the original did.
func (s *SideTables) CopyConfigs(forest *collection.Forest, idMap map[string]string) error {
	for oldID, newID := range idMap {
		if _, isFolder := forest.Folder(newID); isFolder {
			cfg, ok, err := s.FolderConfig(oldID)
			if err != nil {
				return err
			}
			if ok {
				if err := s.SaveFolderConfig(newID, cfg); err != nil {
					return err
				}
			}
			continue
		}

		req, ok, err := s.RequestConfig(oldID)
		if err != nil {
			return err
		}
		if ok {
			req.ID = newID
			if folderID, found := forest.FolderOfRequest(newID); found {
				req.FolderID = folderID
			}
			if err := s.SaveRequestConfig(req); err != nil {
				return err
			}
		}
	}
	return nil
}

// PurgeEntities removes the side-table entries for deleted folders and
// requests, typically the ids returned by Forest.DeleteFolder.
func (s *SideTables) PurgeEntities(folderIDs, requestIDs []string) error {
	for _, id := range folderIDs {
		if err := s.DeleteFolderConfig(id); err != nil {
			return err
		}
	}
	for _, id := range requestIDs {
		if err := s.DeleteRequestConfig(id); err != nil {
			return err
		}
	}
	return nil
}
