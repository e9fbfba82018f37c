package resolve

import (
	"reflect"
	"testing"

	"restlab/collection"
)

type fakeSource struct {
	folders map[string]*collection.Folder
	configs map[string]collection.FolderConfig
}

func (s *fakeSource) Folder(id string) (*collection.Folder, bool) {
	folder, ok := s.folders[id]
	return folder, ok
}

func (s *fakeSource) FolderConfig(id string) (collection.FolderConfig, bool, error) {
	cfg, ok := s.configs[id]
	return cfg, ok, nil
}

// chainSource builds the three-level chain A -> B -> C used across the
// merge tests: A defines Z:4, B defines X:2 and Y:3, C defines X:1.
func chainSource() *fakeSource {
	return &fakeSource{
		folders: map[string]*collection.Folder{
			"A": {ID: "A", Name: "A"},
			"B": {ID: "B", Name: "B", ParentID: "A"},
			"C": {ID: "C", Name: "C", ParentID: "B"},
		},
		configs: map[string]collection.FolderConfig{
			"A": {Headers: []collection.Header{{Key: "Z", Value: "4"}}},
			"B": {Headers: []collection.Header{{Key: "X", Value: "2"}, {Key: "Y", Value: "3"}}},
			"C": {Headers: []collection.Header{{Key: "X", Value: "1"}}},
		},
	}
}

func TestMergeOrder(t *testing.T) {
	r := New(chainSource())

	cfg, err := r.Resolve("C")
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	want := []collection.Header{
		{Key: "Z", Value: "4"},
		{Key: "X", Value: "1"},
		{Key: "Y", Value: "3"},
	}
	if !reflect.DeepEqual(cfg.Headers, want) {
		t.Errorf("Headers = %v, want %v", cfg.Headers, want)
	}
}

func TestResolveIdempotent(t *testing.T) {
	r := New(chainSource())

	first, err := r.Resolve("C")
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	second, err := r.Resolve("C")
	if err != nil {
		t.Fatalf("Failed to resolve again: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolutions differ: %v vs %v", first, second)
	}

	// Mutating one result must not leak into the next
	first.Headers[0].Value = "mutated"
	third, _ := r.Resolve("C")
	if !reflect.DeepEqual(second, third) {
		t.Error("Resolution aliases a previously returned config")
	}
}

func TestResolveSiblingIsolation(t *testing.T) {
	src := chainSource()
	src.folders["D"] = &collection.Folder{ID: "D", Name: "D", ParentID: "A"}
	r := New(src)

	if _, err := r.Resolve("C"); err != nil {
		t.Fatalf("Failed to resolve C: %v", err)
	}
	cfg, err := r.Resolve("D")
	if err != nil {
		t.Fatalf("Failed to resolve D: %v", err)
	}

	// D inherits only A's headers; nothing from the C chain may bleed in
	want := []collection.Header{{Key: "Z", Value: "4"}}
	if !reflect.DeepEqual(cfg.Headers, want) {
		t.Errorf("Headers = %v, want %v", cfg.Headers, want)
	}
}

func TestBaseURLPrecedence(t *testing.T) {
	src := chainSource()

	// No ancestor sets one
	r := New(src)
	cfg, err := r.Resolve("C")
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if cfg.BaseURL != "" {
		t.Errorf("BaseURL = %q, want empty", cfg.BaseURL)
	}

	// Nearest ancestor wins when the child has none
	src.configs["A"] = collection.FolderConfig{BaseURL: "https://a.example"}
	src.configs["B"] = collection.FolderConfig{BaseURL: "https://b.example"}
	cfg, _ = New(src).Resolve("C")
	if cfg.BaseURL != "https://b.example" {
		t.Errorf("BaseURL = %q, want https://b.example", cfg.BaseURL)
	}

	// Child value wins regardless of ancestors
	src.configs["C"] = collection.FolderConfig{BaseURL: "https://c.example"}
	cfg, _ = New(src).Resolve("C")
	if cfg.BaseURL != "https://c.example" {
		t.Errorf("BaseURL = %q, want https://c.example", cfg.BaseURL)
	}
}

func TestResolveRootWithoutConfig(t *testing.T) {
	src := &fakeSource{
		folders: map[string]*collection.Folder{"A": {ID: "A"}},
		configs: map[string]collection.FolderConfig{},
	}

	cfg, err := New(src).Resolve("A")
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	if cfg.BaseURL != "" || cfg.Headers != nil {
		t.Errorf("Config = %+v, want zero value", cfg)
	}
}

func TestResolveUnknownFolder(t *testing.T) {
	if _, err := New(chainSource()).Resolve("missing"); err == nil {
		t.Fatal("Expected error for unknown folder")
	}
}

func TestMergeHeadersLeavesInputsUntouched(t *testing.T) {
	parent := []collection.Header{{Key: "A", Value: "1"}}
	child := []collection.Header{{Key: "a", Value: "2"}}

	merged := MergeHeaders(parent, child)

	if parent[0].Value != "1" {
		t.Error("Parent slice mutated")
	}
	if len(merged) != 1 || merged[0].Key != "A" || merged[0].Value != "2" {
		t.Errorf("Merged = %v", merged)
	}
}
