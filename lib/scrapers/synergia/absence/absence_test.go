package absence

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestMakeBoolean(t *testing.T) {
	testCases := []struct {
		value    string
		expected bool
	}{
		{"tak", true},
		{"Tak", true},
		{"TAK", true},
		{"yes", true},
		{"Yes", true},
		{"no", false},
		{"nie", false},
		{"", false},
		{" tak ", true},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, MakeBoolean(test.value), "value %q", test.value)
	}
}

const detailPage = `<html><body>
<table class="decorated"><tbody>
	<tr><td>Rodzaj</td><td>nieobecność</td></tr>
	<tr><td>Kategoria</td><td>uzasadniona</td></tr>
	<tr><td>Data</td><td>2024-03-01</td></tr>
	<tr><td>Przedmiot</td><td>Matematyka</td></tr>
	<tr><td>Godzina lekcyjna</td><td>3</td></tr>
	<tr><td>Nauczyciel</td><td>Jan Nowak</td></tr>
	<tr><td>Wycieczka</td><td>Tak</td></tr>
	<tr><td>Dodał</td><td>Anna Wiśniewska</td></tr>
</tbody></table>
</body></html>`

func TestParseDetail(t *testing.T) {
	doc := parseFixture(t, detailPage)
	detail := parseDetail(context.Background(), doc)

	require.Equal(t, Detail{
		Type:       "nieobecność",
		Category:   "uzasadniona",
		Date:       "2024-03-01",
		Subject:    "Matematyka",
		LessonHour: "3",
		Teacher:    "Jan Nowak",
		Trip:       true,
		AddedBy:    "Anna Wiśniewska",
	}, detail)
}

// seven rows only: the portal omits the category row for this absence
// kind, the mapper falls back to the shorter key list
const detailPageNoCategory = `<html><body>
<table class="decorated"><tbody>
	<tr><td>Rodzaj</td><td>spóźnienie</td></tr>
	<tr><td>Data</td><td>2024-04-12</td></tr>
	<tr><td>Przedmiot</td><td>Fizyka</td></tr>
	<tr><td>Godzina lekcyjna</td><td>5</td></tr>
	<tr><td>Nauczyciel</td><td>Jan Nowak</td></tr>
	<tr><td>Wycieczka</td><td>Nie</td></tr>
	<tr><td>Dodał</td><td>Anna Wiśniewska</td></tr>
</tbody></table>
</body></html>`

func TestParseDetailWithoutCategory(t *testing.T) {
	doc := parseFixture(t, detailPageNoCategory)
	detail := parseDetail(context.Background(), doc)

	require.Equal(t, Detail{
		Type:       "spóźnienie",
		Category:   "",
		Date:       "2024-04-12",
		Subject:    "Fizyka",
		LessonHour: "5",
		Teacher:    "Jan Nowak",
		Trip:       false,
		AddedBy:    "Anna Wiśniewska",
	}, detail)
}

const listPage = `<html><body>
<table class="center big decorated">
	<tr class="line0">
		<td>2024-03-01</td>
		<td>
			<a onclick="otworz_w_nowym_oknie('/przegladaj_nb/szczegoly/1001','o',420,580)">nb</a>
			<a onclick="otworz_w_nowym_oknie('/przegladaj_nb/szczegoly/1002','o',420,580)">sp</a>
		</td>
		<td>1</td><td>2</td><td>0</td><td>0</td>
	</tr>
	<tr class="line1">
		<td class="center bolded" colspan="6">Okres 1</td>
	</tr>
	<tr class="line0">
		<td>2024-02-14</td>
		<td><a onclick="otworz_w_nowym_oknie('/przegladaj_nb/szczegoly/998','o',420,580)">nb</a></td>
		<td>1</td><td>0</td><td>0</td><td>0</td>
	</tr>
	<tr class="line1">
		<td></td>
		<td>no date in this row</td>
		<td>0</td><td>0</td><td>0</td><td>0</td>
	</tr>
	<tr class="line0">
		<td>too few cells</td>
	</tr>
</table>
</body></html>`

func TestParseDays(t *testing.T) {
	doc := parseFixture(t, listPage)
	days := parseDays(context.Background(), doc)

	require.Len(t, days, 2)

	require.Equal(t, "2024-03-01", days[0].Date)
	require.Equal(t, 0, days[0].Semester)
	require.Equal(t, []Entry{
		{Type: "nb", Id: 1001},
		{Type: "sp", Id: 1002},
	}, days[0].Entries)
	require.Len(t, days[0].Info, 5)

	// the separator row is skipped but bumps the grouping key
	require.Equal(t, "2024-02-14", days[1].Date)
	require.Equal(t, 1, days[1].Semester)
	require.Equal(t, []Entry{{Type: "nb", Id: 998}}, days[1].Entries)
}

func TestExtractEntries(t *testing.T) {
	doc := parseFixture(t, `<table><tr><td>
		<a onclick="otworz_w_nowym_oknie('/przegladaj_nb/szczegoly/123','o',420,580)">nieobecność</a>
		<a onclick="window.open('/some/other/page')">ignored</a>
		<a>no handler at all</a>
	</td></tr></table>`)

	entries := extractEntries(doc.Find("td"))
	require.Equal(t, []Entry{{Type: "nieobecność", Id: 123}}, entries)
}
