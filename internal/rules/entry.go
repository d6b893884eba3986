package rules

// SigmaRepoWeb is the web view of the upstream Sigma repository. Entry paths
// are appended to it to build links.
const SigmaRepoWeb = "https://github.com/SigmaHQ/sigma/blob/master/"

// Entry is one row of the rule catalog. Field order is the JSON key order.
// Optional fields are pointers so that missing values serialize as null.
type Entry struct {
	Title             string   `json:"title"`
	ID                *string  `json:"id"`
	Status            *string  `json:"status"`
	Level             *string  `json:"level"`
	Tags              []string `json:"tags"`
	LogsourceProduct  *string  `json:"logsource_product"`
	LogsourceCategory *string  `json:"logsource_category"`
	LogsourceService  *string  `json:"logsource_service"`
	Path              string   `json:"path"`
	URL               string   `json:"url"`
}

// Project builds a catalog entry from doc. relPath is the slash-separated
// path of the rule file and baseURL is prepended to it for the link.
//
// It returns false when the document has no usable title: missing, null,
// empty, false, zero, or not a scalar.
func Project(doc Document, relPath, baseURL string) (Entry, bool) {
	raw := doc["title"]
	if isFalsy(raw) {
		return Entry{}, false
	}
	title, ok := scalarString(raw)
	if !ok {
		return Entry{}, false
	}

	logsource := doc.Mapping("logsource")

	return Entry{
		Title:             title,
		ID:                doc.String("id"),
		Status:            doc.String("status"),
		Level:             doc.String("level"),
		Tags:              doc.Strings("tags"),
		LogsourceProduct:  logsource.String("product"),
		LogsourceCategory: logsource.String("category"),
		LogsourceService:  logsource.String("service"),
		Path:              relPath,
		URL:               baseURL + relPath,
	}, true
}

func isFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case uint64:
		return t == 0
	case float64:
		return t == 0
	default:
		return false
	}
}
