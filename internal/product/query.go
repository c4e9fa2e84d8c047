package product

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sort keys accepted by the list endpoint. Anything else falls back to
// newest-first.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ListQuery is the flat set of optional list parameters. Translating it to a
// database filter is a pure mapping with no side effects.
type ListQuery struct {
	Category    string
	Subcategory string
	Material    string
	IsNew       bool
	IsPopular   bool
	Search      string
	Sort        string
	Limit       int64
}

// Filter translates the query into a Mongo filter document. Free-text search
// matches name OR description, case-insensitive.
func (q ListQuery) Filter() bson.M {
	filter := bson.M{}

	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Subcategory != "" {
		filter["subcategory"] = q.Subcategory
	}
	if q.Material != "" {
		filter["materials"] = q.Material
	}
	if q.IsNew {
		filter["isNew"] = true
	}
	if q.IsPopular {
		filter["isPopular"] = true
	}
	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexQuote(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	return filter
}

// SortSpec maps the sort key to a fixed field/direction pair.
func (q ListQuery) SortSpec() bson.D {
	switch q.Sort {
	case SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	default:
		return bson.D{{Key: "createdAt", Value: -1}}
	}
}

// Matches applies the same predicate as Filter in plain Go; the in-memory
// repository uses it so handler tests run without a database.
func (q ListQuery) Matches(p Product) bool {
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	if q.Subcategory != "" && p.Subcategory != q.Subcategory {
		return false
	}
	if q.Material != "" && !contains(p.Materials, q.Material) {
		return false
	}
	if q.IsNew && !p.IsNew {
		return false
	}
	if q.IsPopular && !p.IsPopular {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	return true
}

// Apply filters, sorts and limits the slice in plain Go, mirroring what the
// Mongo repository asks the server to do.
func (q ListQuery) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if q.Matches(p) {
			out = append(out, p)
		}
	}

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}

	if q.Limit > 0 && int64(len(out)) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// regexQuote escapes regex metacharacters so user input is matched literally.
func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
