package models

// Record is one schema-less row as returned by a backend read, or the payload
// sent to a backend create.
type Record map[string]any

// IdentityFields are never sent to a destination; it assigns its own.
var IdentityFields = []string{"id", "ID", "_id"}

// String returns the value under key when it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Receipt is what a backend reports back after a create.
type Receipt struct {
	ID  string `json:"id,omitempty"`
	Raw Record `json:"raw,omitempty"`
}
