package convert

// Format detection is an ordered list of shape checks over the parsed
// top-level object, tried in sequence; the first match wins. The same
// checks back explicit format hints, so a hint that fails its check is
// reported as a mismatch rather than falling through to another parser.

type detector struct {
	format Format
	match  func(map[string]interface{}) bool
	parse  func([]byte) (*ImportResult, error)
}

var detectors = []detector{
	{FormatNative, isNativeShape, parseNative},
	{FormatPostman, isPostmanShape, parsePostman},
	{FormatThunder, isThunderShape, parseThunder},
}

func detectorFor(format Format) (detector, bool) {
	for _, d := range detectors {
		if d.format == format {
			return d, true
		}
	}
	return detector{}, false
}

func isNativeShape(probe map[string]interface{}) bool {
	if probe == nil {
		return false
	}
	if t, _ := probe["type"].(string); t != nativeType {
		return false
	}
	_, hasFolder := probe["folder"]
	return hasFolder
}

func isPostmanShape(probe map[string]interface{}) bool {
	if probe == nil {
		return false
	}
	_, hasInfo := probe["info"]
	_, hasItem := probe["item"]
	return hasInfo && hasItem
}

func isThunderShape(probe map[string]interface{}) bool {
	if probe == nil {
		return false
	}
	if _, ok := probe["collectionName"]; ok {
		return true
	}
	if _, ok := probe["colName"]; ok {
		return true
	}
	if requests, ok := probe["requests"]; ok {
		_, isArray := requests.([]interface{})
		return isArray
	}
	return false
}
