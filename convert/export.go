package convert

import (
	"encoding/json"
	"fmt"

	"restlab/collection"
)

// ConfigSource reads the side-table entries an export walk needs. The
// boolean reports whether an entry exists for the id.
type ConfigSource interface {
	FolderConfig(folderID string) (collection.FolderConfig, bool, error)
	RequestConfig(requestID string) (collection.Request, bool, error)
}

// ExportCollection serializes the subtree rooted at folderID in the
// requested format. Side-table entries are fetched through src, not
// read off the tree itself.
func ExportCollection(forest *collection.Forest, src ConfigSource, folderID string, format Format, pretty bool) (string, error) {
	subtree, ok := forest.Subtree(folderID)
	if !ok {
		return "", fmt.Errorf("folder %s not found", folderID)
	}

	var doc interface{}
	var err error
	switch format {
	case FormatNative:
		doc, err = exportNative(subtree, src)
	case FormatPostman:
		doc, err = exportPostman(subtree, src)
	case FormatThunder:
		doc, err = exportThunder(subtree, src)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("exporting folder %s: %w", folderID, err)
	}

	var out []byte
	if pretty {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("serializing export: %w", err)
	}
	return string(out), nil
}
