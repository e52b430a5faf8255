// Package comment defines the comment record domain types shared by the
// cache, the fetchers, and the report.
package comment

// NotFoundText is the text stored for a comment the API no longer resolves.
const NotFoundText = "not found"

// Record is one enriched comment. Text is stored as returned by the API
// (escaped) and normalized when read back from the cache.
type Record struct {
	ID        string `json:"id"`
	Text      string `json:"comment"`
	LikeCount int64  `json:"like_count"`
}

// NotFound returns the sentinel record for id.
func NotFound(id string) Record {
	return Record{ID: id, Text: NotFoundText, LikeCount: 0}
}

// IsNotFound reports whether r is the not-found sentinel.
func (r Record) IsNotFound() bool {
	return r.Text == NotFoundText && r.LikeCount == 0
}
