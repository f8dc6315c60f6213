package scene

import "strings"

const DefaultCategory = "default"

var kindCategories = map[string]string{
	"database":     "database",
	"cache":        "database",
	"search":       "database",
	"api":          "application",
	"microservice": "application",
	"auth":         "application",
	"mobile":       "application",
	"cloud":        "infrastructure",
	"cdn":          "infrastructure",
	"loadbalancer": "infrastructure",
	"payment":      "service",
	"email":        "service",
}

// CategoryForKind maps a component kind onto its presentation category.
// Unknown kinds map to DefaultCategory.
func CategoryForKind(kind string) string {
	if cat, ok := kindCategories[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return cat
	}
	return DefaultCategory
}
