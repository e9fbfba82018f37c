package convert

import (
	"encoding/json"

	"restlab/collection"
)

// ImportResult is a fresh subtree ready to merge into an existing
// forest: the folder tree plus the side-table entries keyed by the
// newly minted ids. Source-file ids are never reused.
type ImportResult struct {
	Folders       []*collection.Folder
	Requests      map[string]collection.Request
	FolderConfigs map[string]collection.FolderConfig
}

func newImportResult() *ImportResult {
	return &ImportResult{
		Requests:      make(map[string]collection.Request),
		FolderConfigs: make(map[string]collection.FolderConfig),
	}
}

// ImportCollection parses raw collection text into canonical entities.
// With an empty hint the format is auto-detected; with a hint the input
// must match that format's shape. Errors are *ParseError for invalid
// JSON, *FormatMismatchError for a failed hint check, and
// *UnknownFormatError when nothing matched.
func ImportCollection(raw string, hint Format) (*ImportResult, error) {
	var top interface{}
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, &ParseError{Err: err}
	}

	// Detection reads top-level fields, so only an object can match.
	probe, _ := top.(map[string]interface{})

	if hint != "" {
		d, ok := detectorFor(hint)
		if !ok || !d.match(probe) {
			return nil, &FormatMismatchError{Format: hint}
		}
		return d.parse([]byte(raw))
	}

	for _, d := range detectors {
		if d.match(probe) {
			return d.parse([]byte(raw))
		}
	}
	return nil, &UnknownFormatError{}
}
