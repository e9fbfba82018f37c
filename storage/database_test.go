package storage

import (
	"os"
	"path/filepath"
	"testing"

	"restlab/collection"
)

func setupTestDB(t *testing.T) (*Database, func()) {
	dbPath := filepath.Join(t.TempDir(), "restlab_test.db")

	db, err := NewDatabase(dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, cleanup
}

func TestGetUpdateDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	if _, ok, err := db.Get("missing"); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	if err := db.Update("restlab.folder.f1", `{"baseUrl":"https://api.x.com"}`); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}

	value, ok, err := db.Get("restlab.folder.f1")
	if err != nil {
		t.Fatalf("Failed to read entry: %v", err)
	}
	if !ok || value != `{"baseUrl":"https://api.x.com"}` {
		t.Errorf("Get = %q, ok=%v", value, ok)
	}

	// Update is an upsert
	if err := db.Update("restlab.folder.f1", `{"baseUrl":"https://api.y.com"}`); err != nil {
		t.Fatalf("Failed to overwrite entry: %v", err)
	}
	value, _, _ = db.Get("restlab.folder.f1")
	if value != `{"baseUrl":"https://api.y.com"}` {
		t.Errorf("After overwrite Get = %q", value)
	}

	if err := db.Delete("restlab.folder.f1"); err != nil {
		t.Fatalf("Failed to delete entry: %v", err)
	}
	if _, ok, _ := db.Get("restlab.folder.f1"); ok {
		t.Error("Entry still present after delete")
	}
}

func TestKeysByPrefix(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	entries := map[string]string{
		"restlab.folder.f1":  "{}",
		"restlab.folder.f2":  "{}",
		"restlab.request.r1": "{}",
	}
	for key, value := range entries {
		if err := db.Update(key, value); err != nil {
			t.Fatalf("Failed to write %s: %v", key, err)
		}
	}

	keys, err := db.Keys("restlab.folder.")
	if err != nil {
		t.Fatalf("Failed to list keys: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Keys returned %d entries, want 2: %v", len(keys), keys)
	}
}

func TestSideTablesRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := NewSideTables(db)

	cfg := collection.FolderConfig{
		BaseURL: "https://api.x.com",
		Headers: []collection.Header{{Key: "Authorization", Value: "Bearer t"}},
	}
	if err := tables.SaveFolderConfig("f1", cfg); err != nil {
		t.Fatalf("Failed to save folder config: %v", err)
	}

	loaded, ok, err := tables.FolderConfig("f1")
	if err != nil || !ok {
		t.Fatalf("Failed to load folder config: ok=%v err=%v", ok, err)
	}
	if loaded.BaseURL != cfg.BaseURL || len(loaded.Headers) != 1 {
		t.Errorf("Loaded config = %+v", loaded)
	}

	req := collection.Request{
		ID:          "r1",
		Name:        "List users",
		FolderID:    "f1",
		Method:      "GET",
		URL:         "/users",
		ContentType: "application/json",
	}
	if err := tables.SaveRequestConfig(req); err != nil {
		t.Fatalf("Failed to save request config: %v", err)
	}

	loadedReq, ok, err := tables.RequestConfig("r1")
	if err != nil || !ok {
		t.Fatalf("Failed to load request config: ok=%v err=%v", ok, err)
	}
	if loadedReq.URL != "/users" || loadedReq.ContentType != "application/json" {
		t.Errorf("Loaded request = %+v", loadedReq)
	}
}

func TestForestPersistence(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := NewSideTables(db)

	forest := collection.NewForest()
	root, err := forest.CreateFolder("API", "")
	if err != nil {
		t.Fatalf("Failed to create folder: %v", err)
	}
	if _, err := forest.CreateFolder("Users", root.ID); err != nil {
		t.Fatalf("Failed to create subfolder: %v", err)
	}
	req, err := forest.CreateRequest(root.ID, "Health", "GET")
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if err := tables.SaveForest(forest); err != nil {
		t.Fatalf("Failed to save forest: %v", err)
	}

	restored, err := tables.LoadForest()
	if err != nil {
		t.Fatalf("Failed to load forest: %v", err)
	}

	if len(restored.Roots()) != 1 {
		t.Fatalf("Restored %d roots, want 1", len(restored.Roots()))
	}
	if _, ok := restored.Folder(root.ID); !ok {
		t.Error("Root folder missing after reload")
	}
	if got, ok := restored.Request(req.ID); !ok || got.Name != "Health" {
		t.Errorf("Request missing after reload: ok=%v got=%+v", ok, got)
	}
}

func TestPurgeEntities(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	tables := NewSideTables(db)
	if err := tables.SaveFolderConfig("f1", collection.FolderConfig{BaseURL: "x"}); err != nil {
		t.Fatalf("Failed to save folder config: %v", err)
	}
	if err := tables.SaveRequestConfig(collection.Request{ID: "r1", Method: "GET"}); err != nil {
		t.Fatalf("Failed to save request config: %v", err)
	}

	if err := tables.PurgeEntities([]string{"f1"}, []string{"r1"}); err != nil {
		t.Fatalf("Failed to purge: %v", err)
	}

	if _, ok, _ := tables.FolderConfig("f1"); ok {
		t.Error("Folder config still present after purge")
	}
	if _, ok, _ := tables.RequestConfig("r1"); ok {
		t.Error("Request config still present after purge")
	}
}
