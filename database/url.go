package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL with a database name.
// When databaseName is empty the base URL is returned untouched. Otherwise the
// name is placed before any query string and sslmode=disable is appended
// unless the URL already selects a mode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	if hasQuery {
		// a trailing slash may sit before the query string
		base = strings.TrimRight(base, "/")
	}

	databaseURL := fmt.Sprintf("%s/%s", base, databaseName)
	if hasQuery && query != "" {
		databaseURL = fmt.Sprintf("%s?%s", databaseURL, query)
	}

	if strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	if strings.Contains(databaseURL, "?") {
		return databaseURL + "&sslmode=disable"
	}
	return databaseURL + "?sslmode=disable"
}
