package web

import (
	"encoding/json"
	"net/http"

	"restlab/collection"
)

// Tree mutation endpoints. Every mutation persists the forest before
// answering, so a crash never loses an acknowledged change.

type folderMutation struct {
	Action   string `json:"action"` // create, rename, move, duplicate, delete
	FolderID string `json:"folder_id,omitempty"`
	Name     string `json:"name,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type requestMutation struct {
	Action    string `json:"action"` // create, rename, move, duplicate, delete, set-method
	RequestID string `json:"request_id,omitempty"`
	FolderID  string `json:"folder_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Method    string `json:"method,omitempty"`
}

func (s *Server) handleFolderMutation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var m folderMutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.forestMux.Lock()
	defer s.forestMux.Unlock()

	var result interface{}
	var err error
	switch m.Action {
	case "create":
		result, err = s.forest.CreateFolder(m.Name, m.ParentID)
	case "rename":
		err = s.forest.RenameFolder(m.FolderID, m.Name)
	case "move":
		err = s.forest.MoveFolder(m.FolderID, m.ParentID)
	case "duplicate":
		var idMap map[string]string
		result, idMap, err = s.forest.DuplicateFolder(m.FolderID)
		if err == nil {
			err = s.tables.CopyConfigs(s.forest, idMap)
		}
	case "delete":
		var folderIDs, requestIDs []string
		folderIDs, requestIDs, err = s.forest.DeleteFolder(m.FolderID)
		if err == nil {
			err = s.tables.PurgeEntities(folderIDs, requestIDs)
		}
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.tables.SaveForest(s.forest); err != nil {
		http.Error(w, "Failed to save collections", http.StatusInternalServerError)
		return
	}

	if result == nil {
		result = map[string]string{"status": "ok"}
	}
	writeJSON(w, result)
}

func (s *Server) handleRequestMutation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var m requestMutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.forestMux.Lock()
	defer s.forestMux.Unlock()

	var result interface{}
	var err error
	switch m.Action {
	case "create":
		result, err = s.forest.CreateRequest(m.FolderID, m.Name, m.Method)
	case "rename":
		err = s.forest.RenameRequest(m.RequestID, m.Name)
	case "move":
		err = s.forest.MoveRequest(m.RequestID, m.FolderID)
	case "set-method":
		err = s.forest.UpdateRequestMethod(m.RequestID, m.Method)
	case "duplicate":
		var dup collection.Request
		dup, err = s.forest.DuplicateRequest(m.RequestID)
		if err == nil {
			detail, ok, cfgErr := s.tables.RequestConfig(m.RequestID)
			if cfgErr != nil {
				err = cfgErr
			} else if ok {
				detail.ID = dup.ID
				detail.Name = dup.Name
				err = s.tables.SaveRequestConfig(detail)
			}
		}
		result = dup
	case "delete":
		err = s.forest.DeleteRequest(m.RequestID)
		if err == nil {
			err = s.tables.DeleteRequestConfig(m.RequestID)
		}
	default:
		http.Error(w, "Unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.tables.SaveForest(s.forest); err != nil {
		http.Error(w, "Failed to save collections", http.StatusInternalServerError)
		return
	}

	if result == nil {
		result = map[string]string{"status": "ok"}
	}
	writeJSON(w, result)
}

// handleRequestDetail reads or writes the stored request detail. A write
// also refreshes the method shown on the tree entry.
func (s *Server) handleRequestDetail(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		id := r.URL.Query().Get("request")
		if id == "" {
			http.Error(w, "Missing request parameter", http.StatusBadRequest)
			return
		}
		s.forestMux.RLock()
		detail, ok, err := s.tables.RequestConfig(id)
		s.forestMux.RUnlock()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "Request not found", http.StatusNotFound)
			return
		}
		writeJSON(w, detail)

	case http.MethodPost:
		var detail collection.Request
		if err := json.NewDecoder(r.Body).Decode(&detail); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.forestMux.Lock()
		defer s.forestMux.Unlock()

		summary, ok := s.forest.Request(detail.ID)
		if !ok {
			http.Error(w, "Request not found", http.StatusNotFound)
			return
		}
		if detail.Name == "" {
			detail.Name = summary.Name
		}
		detail.FolderID = summary.FolderID

		if err := s.tables.SaveRequestConfig(detail); err != nil {
			http.Error(w, "Failed to save request", http.StatusInternalServerError)
			return
		}
		if detail.Method != "" && detail.Method != summary.Method {
			if err := s.forest.UpdateRequestMethod(detail.ID, detail.Method); err == nil {
				if err := s.tables.SaveForest(s.forest); err != nil {
					http.Error(w, "Failed to save collections", http.StatusInternalServerError)
					return
				}
			}
		}
		writeJSON(w, detail)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
