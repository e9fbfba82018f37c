package storage

import "restlab/collection"

// Snapshot pairs the in-memory forest with the side tables, giving the
// resolver and the exporters one read surface. The surrounding system
// keeps the forest stable for the duration of one resolution; see the
// single-writer note on Store.
type Snapshot struct {
	forest *collection.Forest
	tables *SideTables
}

func NewSnapshot(forest *collection.Forest, tables *SideTables) *Snapshot {
	return &Snapshot{forest: forest, tables: tables}
}

func (s *Snapshot) Folder(id string) (*collection.Folder, bool) {
	return s.forest.Folder(id)
}

func (s *Snapshot) FolderConfig(id string) (collection.FolderConfig, bool, error) {
	return s.tables.FolderConfig(id)
}

func (s *Snapshot) RequestConfig(id string) (collection.Request, bool, error) {
	return s.tables.RequestConfig(id)
}
