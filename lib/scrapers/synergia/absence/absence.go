// Package absence scrapes the absence list and detail pages of the
// Synergia portal.
package absence

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"synergia-backend/lib/htmlutil"
	"synergia-backend/lib/scrapers/synergia/core"
	"synergia-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/synergia/absence")

// Detail is a single absence as shown on its detail page. Category is
// empty when the portal omits the category row for this absence kind.
type Detail struct {
	Type       string `json:"type"`
	Category   string `json:"category,omitempty"`
	Date       string `json:"date"`
	Subject    string `json:"subject"`
	LessonHour string `json:"lesson_hour"`
	Teacher    string `json:"teacher"`
	Trip       bool   `json:"trip"`
	AddedBy    string `json:"added_by"`
}

// Entry is one absence marker inside a day row of the list view,
// linking to a detail page by id.
type Entry struct {
	Type string `json:"type"`
	Id   int    `json:"id"`
}

// Day is one row of the absence list view. Info carries the trailing
// five free-text cells in column order; the portal gives them no stable
// identity. Semester counts the separator rows seen before this one so
// callers can group by term if they care.
type Day struct {
	Date     string   `json:"date"`
	Semester int      `json:"semester"`
	Entries  []Entry  `json:"table"`
	Info     []string `json:"info"`
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

var detailKeys = []string{"type", "category", "date", "subject", "lesson_hour", "teacher", "trip", "added_by"}

// GetAbsence fetches and parses the detail page for a single absence.
func (c Client) GetAbsence(ctx context.Context, id int) (Detail, error) {
	ctx, span := tracer.Start(ctx, "client:GetAbsence")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, fmt.Sprintf("przegladaj_nb/szczegoly/%d", id), nil)
	if err != nil {
		return Detail{}, err
	}
	return parseDetail(ctx, doc), nil
}

func parseDetail(ctx context.Context, doc *goquery.Document) Detail {
	keys := detailKeys
	values := core.MapTable(doc, "table.decorated tbody", keys)
	if !values.HasAll(keys) {
		// assume the optional category row is the one missing and remap
		// with the shorter key list. this fires even when a different
		// field is actually absent; a known narrowness kept from the
		// portal's ambiguous layout.
		slog.WarnContext(ctx, "absence detail missing fields, remapping without category")
		keys = []string{"type", "date", "subject", "lesson_hour", "teacher", "trip", "added_by"}
		values = core.MapTable(doc, "table.decorated tbody", keys)
	}

	return Detail{
		Type:       values["type"],
		Category:   values["category"],
		Date:       values["date"],
		Subject:    values["subject"],
		LessonHour: values["lesson_hour"],
		Teacher:    values["teacher"],
		Trip:       MakeBoolean(values.GetOr("trip", "no")),
		AddedBy:    values["added_by"],
	}
}

// GetAbsences fetches the absence list view and parses its day rows.
// Row-level parse problems are logged and skipped, they never abort the
// whole listing.
func (c Client) GetAbsences(ctx context.Context) ([]Day, error) {
	ctx, span := tracer.Start(ctx, "client:GetAbsences")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, "przegladaj_nb/uczen", nil)
	if err != nil {
		return nil, err
	}

	days := parseDays(ctx, doc)
	slog.InfoContext(ctx, "retrieved absences", "count", len(days))
	return days, nil
}

func parseDays(ctx context.Context, doc *goquery.Document) []Day {
	var days []Day
	semester := 0
	doc.Find("table.center.big.decorated tr[class*='line']").Each(func(i int, row *goquery.Selection) {
		if isSemesterHeader(row) {
			semester++
			return
		}
		day, ok := parseDayRow(ctx, i, row)
		if !ok {
			return
		}
		day.Semester = semester
		days = append(days, day)
	})
	return days
}

// the list view separates terms with a single bolded label row
func isSemesterHeader(row *goquery.Selection) bool {
	header := row.Find(".center.bolded").First()
	return header.Length() > 0 && htmlutil.Text(header) == "Okres 1"
}

func parseDayRow(ctx context.Context, index int, row *goquery.Selection) (Day, bool) {
	cells := row.Find("td")
	if cells.Length() < 6 {
		slog.WarnContext(ctx, "skipping absence row with insufficient cells",
			"row", index, "cells", cells.Length())
		return Day{}, false
	}

	date := htmlutil.Text(cells.Eq(0))
	if date == "" {
		slog.DebugContext(ctx, "skipping absence row without a date", "row", index)
		return Day{}, false
	}

	info := make([]string, 0, 5)
	for i := cells.Length() - 5; i < cells.Length(); i++ {
		info = append(info, htmlutil.Text(cells.Eq(i)))
	}

	return Day{
		Date:    date,
		Entries: extractEntries(cells.Eq(1)),
		Info:    info,
	}, true
}

var detailIdRegex = regexp.MustCompile(`/szczegoly/(\d+)`)

// extractEntries pulls {type, id} pairs out of the marker links in a
// day cell. The detail id only exists inside the link's inline onclick
// handler, there is no href to follow.
func extractEntries(column *goquery.Selection) []Entry {
	entries := []Entry{}
	column.Find("a").Each(func(_ int, link *goquery.Selection) {
		onclick := link.AttrOr("onclick", "")
		groups := detailIdRegex.FindStringSubmatch(onclick)
		if len(groups) < 2 {
			return
		}
		id, err := strconv.Atoi(groups[1])
		if err != nil {
			return
		}
		entries = append(entries, Entry{
			Type: htmlutil.Text(link),
			Id:   id,
		})
	})
	return entries
}

// MakeBoolean interprets the portal's yes/no vocabulary: the Polish
// affirmative "tak" and "yes", case-insensitively. Everything else,
// including the empty string, is false.
func MakeBoolean(value string) bool {
	normalized := textutil.NormalizeName(value)
	return normalized == "tak" || normalized == "yes"
}
