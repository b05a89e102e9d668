package etl

import (
	"strings"

	"github.com/bangtanmom/contentsync/pkg/models"
	"github.com/bangtanmom/contentsync/pkg/utils"
)

// DedupIndex is the set of slugs known to exist at the destination. It is
// built for one run and is not safe for concurrent use.
type DedupIndex struct {
	slugs map[string]struct{}
}

// NewDedupIndex seeds an index from the slug field of existing records.
// Records without a slug are ignored.
func NewDedupIndex(existing []models.Record) *DedupIndex {
	idx := &DedupIndex{slugs: make(map[string]struct{}, len(existing))}
	for _, rec := range existing {
		if slug, ok := utils.ConvertToString(rec["slug"]); ok {
			idx.Add(slug)
		}
	}
	return idx
}

// SlugKey is the form slugs are compared in.
func SlugKey(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// Has reports whether slug is already taken.
func (d *DedupIndex) Has(slug string) bool {
	_, ok := d.slugs[SlugKey(slug)]
	return ok
}

// Add marks slug as taken. Blank slugs are not recorded.
func (d *DedupIndex) Add(slug string) {
	key := SlugKey(slug)
	if key == "" {
		return
	}
	d.slugs[key] = struct{}{}
}

// Len returns the number of distinct slugs.
func (d *DedupIndex) Len() int {
	return len(d.slugs)
}
