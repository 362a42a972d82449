package grade

import (
	"context"
	"strings"
	"testing"

	"synergia-backend/lib/scrapers/synergia/core"

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

func TestParseTitle(t *testing.T) {
	info, err := ParseTitle("Key: Value<br />Another Key: Another Value")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"Key":         "Value",
		"Another Key": "Another Value",
	}, info)
}

func TestParseTitleMalformedSegment(t *testing.T) {
	_, err := ParseTitle("Kategoria: sprawdzian<br />segment without a colon")
	require.ErrorIs(t, err, core.ErrMalformedField)
}

const overviewPage = `<html><body>
<table class="decorated stretch"><tbody>
	<tr class="line0">
		<td>1</td>
		<td>Matematyka</td>
		<td>
			<span class="grade-box"><a title="Kategoria: sprawdzian<br />Waga: 5">4+</a></span>
			<span class="grade-box"><a title="Kategoria: kartkówka<br />Waga: 2">5</a></span>
		</td>
	</tr>
	<tr class="line1">
		<td>2</td>
		<td>Fizyka</td>
		<td></td>
	</tr>
	<tr class="line0">
		<td>3</td>
		<td>Chemia</td>
		<td>
			<span class="grade-box"><a title="Kategoria: odpowiedź">3</a></span>
		</td>
	</tr>
</tbody></table>
</body></html>`

func TestParseSubjects(t *testing.T) {
	doc := parseFixture(t, overviewPage)
	subjects, err := parseSubjects(context.Background(), doc)
	require.NoError(t, err)

	// the gradeless Fizyka row must be omitted entirely, not returned
	// with an empty list
	require.Len(t, subjects, 2)

	require.Equal(t, "Matematyka", subjects[0].Subject)
	require.Equal(t, []Grade{
		{Value: "4+", Info: map[string]string{"Kategoria": "sprawdzian", "Waga": "5"}},
		{Value: "5", Info: map[string]string{"Kategoria": "kartkówka", "Waga": "2"}},
	}, subjects[0].Grades)

	require.Equal(t, "Chemia", subjects[1].Subject)
	require.Equal(t, []Grade{
		{Value: "3", Info: map[string]string{"Kategoria": "odpowiedź"}},
	}, subjects[1].Grades)
}

func TestParseSubjectsMalformedAdvisoryText(t *testing.T) {
	doc := parseFixture(t, `<html><body>
	<table class="decorated stretch"><tbody>
		<tr class="line0">
			<td>1</td>
			<td>Matematyka</td>
			<td><span class="grade-box"><a title="no colon here">2</a></span></td>
		</tr>
	</tbody></table>
	</body></html>`)

	_, err := parseSubjects(context.Background(), doc)
	require.ErrorIs(t, err, core.ErrMalformedField)
}

const semesterRow = `<table><tr>
	<td><span class="grade-box"><a title="Kategoria: sprawdzian">5</a></span></td>
	<td>4.5</td>
	<td>4.0</td>
</tr></table>`

func TestParseSemester(t *testing.T) {
	doc := parseFixture(t, semesterRow)
	semester, err := ParseSemester(doc.Find("td"), 0)
	require.NoError(t, err)

	require.Equal(t, Semester{
		Grades: []Grade{
			{Value: "5", Info: map[string]string{"Kategoria": "sprawdzian"}},
		},
		TempAverage: 4.5,
		Average:     4.0,
	}, semester)
}

func TestParseSemesterNonNumericAverage(t *testing.T) {
	doc := parseFixture(t, `<table><tr>
		<td><span class="grade-box"><a title="Kategoria: sprawdzian">5</a></span></td>
		<td>not a number</td>
		<td>4.0</td>
	</tr></table>`)

	_, err := ParseSemester(doc.Find("td"), 0)
	require.ErrorIs(t, err, core.ErrMalformedField)
}
