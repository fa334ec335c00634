package items

import (
	"net/url"

	"github.com/JaimeStill/tally/pkg/query"
	"github.com/JaimeStill/tally/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "items", "i").
	Project("id", "ID").
	Project("name", "Name").
	Project("source", "Source").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for item queries. Nil fields
// are ignored. Source and ContentType use exact matching. Name and
// StorageKey use case-insensitive contains matching.
type Filters struct {
	Name        *string `json:"name,omitempty"`
	Source      *string `json:"source,omitempty"`
	ContentType *string `json:"content_type,omitempty"`
	StorageKey  *string `json:"storage_key,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Source", f.Source).
		WhereEquals("ContentType", f.ContentType).
		WhereContains("StorageKey", f.StorageKey)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if s := values.Get("source"); s != "" {
		f.Source = &s
	}

	if ct := values.Get("content_type"); ct != "" {
		f.ContentType = &ct
	}

	if sk := values.Get("storage_key"); sk != "" {
		f.StorageKey = &sk
	}

	return f
}

func scanItem(s repository.Scanner) (Item, error) {
	var i Item
	err := s.Scan(
		&i.ID,
		&i.Name,
		&i.Source,
		&i.ContentType,
		&i.SizeBytes,
		&i.StorageKey,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
