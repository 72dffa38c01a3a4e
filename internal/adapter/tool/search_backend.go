package tool

import "context"

// SearchBackend abstracts a web search engine.
type SearchBackend interface {
	// Search issues one query and returns the decoded response.
	Search(ctx context.Context, query string) (*SearchResponse, error)
	// Name returns the backend identifier (e.g. "google").
	Name() string
}

// SearchResponse models the portion of the Custom Search JSON API response
// the search tool reads. Items is nil when the engine found nothing.
type SearchResponse struct {
	Items []SearchResultItem `json:"items"`
}

// SearchResultItem is a single search hit.
type SearchResultItem struct {
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Snippet string   `json:"snippet"`
	PageMap *PageMap `json:"pagemap,omitempty"`
}

// PageMap carries structured data the engine extracted from the page.
type PageMap struct {
	MetaTags []map[string]any `json:"metatags,omitempty"`
}

// OpenGraphDescription returns the first non-empty string stored under
// "og:description" in the item's metatags.
func (it SearchResultItem) OpenGraphDescription() (string, bool) {
	if it.PageMap == nil {
		return "", false
	}
	for _, tags := range it.PageMap.MetaTags {
		if s, ok := tags["og:description"].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}
