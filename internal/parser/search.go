package parser

import (
	"fmt"
	"net/url"
	"strings"
)

const searchPath = "/nx/search/jobs"

// componentUnescaper undoes the escapes url.QueryEscape applies to characters
// that encodeURIComponent leaves alone, so generated URLs match the browser's.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// SearchURL builds the most-recent-first search URL for a query and 1-based page.
func SearchURL(baseURL, query string, page, pageSize int) string {
	return fmt.Sprintf("%s%s?per_page=%d&q=%s&sort=recency&page=%d",
		strings.TrimRight(baseURL, "/"),
		searchPath,
		pageSize,
		encodeComponent(query),
		page,
	)
}

func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
