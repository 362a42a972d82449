package core

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
)

func parseFixture(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestMapTable(t *testing.T) {
	testCases := []struct {
		name     string
		html     string
		keys     []string
		expected TableValues
	}{
		{
			name: "label value pairs",
			html: `<table class="decorated"><tbody>
				<tr><td>Type</td><td>nieobecność</td></tr>
				<tr><td>Date</td><td>2024-03-01</td></tr>
			</tbody></table>`,
			keys:     []string{"type", "date"},
			expected: TableValues{"type": "nieobecność", "date": "2024-03-01"},
		},
		{
			name: "more keys than rows leaves extra keys absent",
			html: `<table class="decorated"><tbody>
				<tr><td>Type</td><td>nieobecność</td></tr>
			</tbody></table>`,
			keys:     []string{"type", "date", "subject"},
			expected: TableValues{"type": "nieobecność"},
		},
		{
			name: "more rows than keys ignores extra rows",
			html: `<table class="decorated"><tbody>
				<tr><td>Type</td><td>nieobecność</td></tr>
				<tr><td>Date</td><td>2024-03-01</td></tr>
				<tr><td>Subject</td><td>Matematyka</td></tr>
			</tbody></table>`,
			keys:     []string{"type", "date"},
			expected: TableValues{"type": "nieobecność", "date": "2024-03-01"},
		},
		{
			name: "row with a single cell leaves its key absent",
			html: `<table class="decorated"><tbody>
				<tr><td>Type</td><td>nieobecność</td></tr>
				<tr><td>Lonely label</td></tr>
				<tr><td>Subject</td><td>Matematyka</td></tr>
			</tbody></table>`,
			keys:     []string{"type", "date", "subject"},
			expected: TableValues{"type": "nieobecność", "subject": "Matematyka"},
		},
		{
			name:     "missing table maps every key absent",
			html:     `<div>no table here</div>`,
			keys:     []string{"type", "date"},
			expected: TableValues{},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			doc := parseFixture(t, test.html)
			got := MapTable(doc, "table.decorated tbody", test.keys)
			if diff := cmp.Diff(test.expected, got); diff != "" {
				t.Fatalf("unexpected mapping (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTableValuesHasAll(t *testing.T) {
	values := TableValues{"type": "a", "date": "b"}
	if !values.HasAll([]string{"type", "date"}) {
		t.Fatal("expected HasAll to succeed for present keys")
	}
	if values.HasAll([]string{"type", "date", "subject"}) {
		t.Fatal("expected HasAll to fail for an absent key")
	}
}

func TestTableValuesGetOr(t *testing.T) {
	values := TableValues{"trip": "tak"}
	if got := values.GetOr("trip", "no"); got != "tak" {
		t.Fatal("expected present key to win over fallback, got", got)
	}
	if got := values.GetOr("missing", "no"); got != "no" {
		t.Fatal("expected fallback for absent key, got", got)
	}
}
