package core

import (
	"log/slog"

	"synergia-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// TableValues holds the result of a positional table mapping. A key
// missing from the map means the corresponding row was absent or had no
// value cell.
type TableValues map[string]string

func (v TableValues) HasAll(keys []string) bool {
	for _, key := range keys {
		if _, ok := v[key]; !ok {
			return false
		}
	}
	return true
}

func (v TableValues) GetOr(key, fallback string) string {
	value, ok := v[key]
	if !ok {
		return fallback
	}
	return value
}

// MapTableValues zips table rows to field names purely by position: the
// Nth row supplies the Nth key's value, taken from the row's second cell
// (the first cell is the label, discarded). The portal renders these
// tables as label/value pairs with no stable attribute keys, so
// correctness depends entirely on the caller listing keys in the exact
// row order the server emits.
//
// Rows with fewer than two cells leave their key absent. Extra keys
// beyond the row count stay absent, extra rows beyond the key count are
// ignored; mismatches truncate, they never fail.
func MapTableValues(sel *goquery.Selection, keys []string) TableValues {
	values := TableValues{}
	rows := sel.Find("tr")
	for i, key := range keys {
		if i >= rows.Length() {
			break
		}
		cells := rows.Eq(i).Find("td")
		if cells.Length() < 2 {
			continue
		}
		values[key] = htmlutil.Text(cells.Eq(1))
	}
	return values
}

// MapTable scopes MapTableValues to a single table located by selector.
// An unlocatable table degrades to an empty mapping (every key absent)
// rather than an error.
func MapTable(doc *goquery.Document, selector string, keys []string) TableValues {
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		slog.Warn("table not found", "selector", selector)
		return TableValues{}
	}
	return MapTableValues(table, keys)
}
