package collection

import "github.com/google/uuid"

// Id prefixes keep folder and request keys distinguishable in the store
// and in exported files. The random part is a UUID so duplicating many
// entities in the same instant cannot collide.

func NewFolderID() string {
	return "folder-" + uuid.New().String()
}

func NewRequestID() string {
	return "request-" + uuid.New().String()
}
