package convert

import (
	"encoding/json"

	"restlab/collection"
)

// nativeType marks RESTLab's own export files.
const nativeType = "restlab-collection"

const (
	nativeVersion = "1.0.0"
	postmanSchema = "https://schema.getpostman.com/json/collection/v2.1.0/collection.json"
)

// nativeCollection is the RESTLab wire schema: the folder tree embedded
// as stored, with the side tables carried alongside keyed by id.
type nativeCollection struct {
	Version        string                             `json:"version"`
	ExportedAt     string                             `json:"exportedAt"`
	Type           string                             `json:"type"`
	Folder         *collection.Folder                 `json:"folder"`
	FolderConfigs  map[string]collection.FolderConfig `json:"folderConfigs"`
	RequestConfigs map[string]collection.Request      `json:"requestConfigs"`
}

// Postman collection v2.1 subset.

type postmanCollection struct {
	Info     postmanInfo       `json:"info"`
	Item     []postmanItem     `json:"item"`
	Variable []postmanVariable `json:"variable,omitempty"`
}

type postmanInfo struct {
	Name      string `json:"name"`
	Schema    string `json:"schema,omitempty"`
	PostmanID string `json:"_postman_id,omitempty"`
}

type postmanItem struct {
	Name    string          `json:"name"`
	Item    []postmanItem   `json:"item,omitempty"`
	Request *postmanRequest `json:"request,omitempty"`
}

type postmanRequest struct {
	Method string          `json:"method"`
	Header []postmanHeader `json:"header"`
	Body   *postmanBody    `json:"body,omitempty"`
	URL    postmanURL      `json:"url"`
}

// postmanURL accepts both forms Postman files use: a bare string or an
// object carrying the raw URL. It always marshals as the object form.
type postmanURL struct {
	Raw string `json:"raw"`
}

func (u *postmanURL) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &u.Raw)
	}
	type plain postmanURL
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = postmanURL(p)
	return nil
}

type postmanHeader struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Type     string `json:"type,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

type postmanBody struct {
	Mode       string              `json:"mode"`
	Raw        string              `json:"raw,omitempty"`
	URLEncoded []postmanParam      `json:"urlencoded,omitempty"`
	FormData   []postmanParam      `json:"formdata,omitempty"`
	Options    *postmanBodyOptions `json:"options,omitempty"`
}

type postmanParam struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type postmanBodyOptions struct {
	Raw *postmanRawOptions `json:"raw,omitempty"`
}

type postmanRawOptions struct {
	Language string `json:"language"`
}

type postmanVariable struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Thunder Client collection schema.

type thunderCollection struct {
	CollectionName string           `json:"collectionName,omitempty"`
	ColName        string           `json:"colName,omitempty"`
	Requests       []thunderRequest `json:"requests"`
	Folders        []thunderFolder  `json:"folders"`
}

type thunderFolder struct {
	Name     string           `json:"name"`
	Requests []thunderRequest `json:"requests"`
	Folders  []thunderFolder  `json:"folders"`
}

type thunderRequest struct {
	Name    string          `json:"name"`
	Method  string          `json:"method"`
	URL     string          `json:"url"`
	Headers []thunderHeader `json:"headers,omitempty"`
	Body    *thunderBody    `json:"body,omitempty"`
}

type thunderHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type thunderBody struct {
	Type string             `json:"type,omitempty"`
	Raw  string             `json:"raw,omitempty"`
	Form []thunderFormParam `json:"form,omitempty"`
}

type thunderFormParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
