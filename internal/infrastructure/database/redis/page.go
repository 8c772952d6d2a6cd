package redis

// PagePrefix starts every page cache key.
const PagePrefix = "page:"

// Page is a rendered response held in the page cache.
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// PageKey is the cache key of the page served at path.
func PageKey(path string) string {
	return PagePrefix + path
}
