package runner

import (
	"fmt"
	"strings"

	"restlab/collection"
)

var methodsWithBody = map[string]bool{
	"POST":  true,
	"PUT":   true,
	"PATCH": true,
}

// Curl renders a shell command equivalent to what Build and Execute
// would send for the same inputs. URL and header merging go through
// mergeTarget, the same path Build uses, so the two cannot drift.
func Curl(req collection.Request, cfg collection.FolderConfig) string {
	t := mergeTarget(req, cfg)

	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s '%s'", req.Method, shellEscape(t.url))

	for _, h := range t.headers {
		fmt.Fprintf(&b, " \\\n  -H '%s: %s'", h.Key, shellEscape(h.Value))
	}

	if !methodsWithBody[req.Method] {
		return b.String()
	}

	if IsFormContentType(req.ContentType) && len(req.FormData) > 0 {
		if req.ContentType == "multipart/form-data" {
			for _, item := range req.FormData {
				if item.Type == "file" && item.FileName != "" {
					fmt.Fprintf(&b, " \\\n  -F '%s=@%s'", item.Key, item.FileName)
				} else if item.Key != "" {
					fmt.Fprintf(&b, " \\\n  -F '%s=%s'", item.Key, shellEscape(item.Value))
				}
			}
		} else if body := FormBody(req.FormData); body != "" {
			fmt.Fprintf(&b, " \\\n  -d '%s'", shellEscape(body))
		}
	} else if req.Body != "" {
		fmt.Fprintf(&b, " \\\n  -d '%s'", shellEscape(StripCommentLines(req.Body)))
	}

	return b.String()
}

// shellEscape makes a value safe inside single quotes by closing the
// quote, emitting an escaped quote, and reopening.
func shellEscape(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
