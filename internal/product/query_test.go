package product

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestListQueryFilter(t *testing.T) {
	q := ListQuery{Category: "sofas", Material: "velvet", IsNew: true, Search: "corner (grey)"}
	filter := q.Filter()

	if filter["category"] != "sofas" {
		t.Fatalf("category missing from filter: %v", filter)
	}
	if filter["materials"] != "velvet" {
		t.Fatalf("material missing from filter: %v", filter)
	}
	if filter["isNew"] != true {
		t.Fatalf("isNew missing from filter: %v", filter)
	}

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("expected $or over name and description, got %v", filter["$or"])
	}
	re := or[0].(bson.M)["name"].(primitive.Regex)
	if re.Options != "i" {
		t.Fatalf("search must be case-insensitive, got options %q", re.Options)
	}
	if re.Pattern != `corner \(grey\)` {
		t.Fatalf("metacharacters not escaped: %q", re.Pattern)
	}
}

func TestListQueryFilter_EmptyQueryMatchesAll(t *testing.T) {
	if filter := (ListQuery{}).Filter(); len(filter) != 0 {
		t.Fatalf("empty query produced a non-empty filter: %v", filter)
	}
}

func TestListQuerySortSpec(t *testing.T) {
	cases := []struct {
		sort  string
		field string
		dir   int
	}{
		{SortPriceAsc, "price", 1},
		{SortPriceDesc, "price", -1},
		{SortNewest, "createdAt", -1},
		{"", "createdAt", -1},
		{"bogus", "createdAt", -1},
	}
	for _, tc := range cases {
		spec := ListQuery{Sort: tc.sort}.SortSpec()
		if spec[0].Key != tc.field || spec[0].Value != tc.dir {
			t.Fatalf("sort %q: expected %s/%d, got %v", tc.sort, tc.field, tc.dir, spec)
		}
	}
}

func TestListQueryApply(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	products := []Product{
		{Name: "Loft Sofa", Category: "sofas", Price: 300, CreatedAt: base},
		{Name: "Corner Sofa", Category: "sofas", Price: 100, CreatedAt: base.Add(time.Hour)},
		{Name: "Bar Chair", Category: "chairs", Price: 200, CreatedAt: base.Add(2 * time.Hour)},
	}

	got := ListQuery{Category: "sofas", Sort: SortPriceAsc}.Apply(products)
	if len(got) != 2 || got[0].Name != "Corner Sofa" || got[1].Name != "Loft Sofa" {
		t.Fatalf("unexpected price_asc result: %v", names(got))
	}

	got = ListQuery{}.Apply(products)
	if got[0].Name != "Bar Chair" {
		t.Fatalf("default sort must be newest first, got %v", names(got))
	}

	got = ListQuery{Limit: 1}.Apply(products)
	if len(got) != 1 {
		t.Fatalf("limit not applied, got %d items", len(got))
	}
}

func TestListQueryMatches_SearchIsCaseInsensitive(t *testing.T) {
	p := Product{Name: "Velvet Pouf", Description: "Compact storage pouf"}

	if !(ListQuery{Search: "VELVET"}).Matches(p) {
		t.Fatalf("expected name match to ignore case")
	}
	if !(ListQuery{Search: "storage"}).Matches(p) {
		t.Fatalf("expected description to be searched")
	}
	if (ListQuery{Search: "marble"}).Matches(p) {
		t.Fatalf("expected no match for absent term")
	}
}

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}
