package catalogmodel

import "time"

// Collection is a named, mutable group of frames; membership also acts as
// a retention-protection marker (§3, §4.6).
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tag is a named, colored label applied to frames. Name is globally
// unique (§3).
type Tag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}
