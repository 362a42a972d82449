// Package grade scrapes the grade overview page of the Synergia portal.
package grade

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"synergia-backend/lib/htmlutil"
	"synergia-backend/lib/scrapers/synergia/core"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("scrapers/synergia/grade")

// Grade is a single grade badge. Info carries the key/value metadata
// the portal packs into the badge's title attribute (category, weight,
// teacher and so on; the label set varies per school).
type Grade struct {
	Value string            `json:"value"`
	Info  map[string]string `json:"info"`
}

// Subject groups the grades of one subject row.
type Subject struct {
	Subject string  `json:"subject"`
	Grades  []Grade `json:"grades"`
}

// Semester is the parsed semester block of a subject row: its grades
// plus the running and final averages.
type Semester struct {
	Grades      []Grade `json:"grades"`
	TempAverage float64 `json:"tempAverage"`
	Average     float64 `json:"average"`
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

// GetGrades fetches the grade overview and returns one record per
// subject row that has at least one grade. Subjects without grades are
// omitted entirely, not returned with an empty list.
func (c Client) GetGrades(ctx context.Context) ([]Subject, error) {
	ctx, span := tracer.Start(ctx, "client:GetGrades")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, "przegladaj_oceny/uczen", nil)
	if err != nil {
		return nil, err
	}
	return parseSubjects(ctx, doc)
}

func parseSubjects(ctx context.Context, doc *goquery.Document) ([]Subject, error) {
	var subjects []Subject
	var parseErr error

	rows := doc.Find("table.decorated.stretch > tbody > tr[class^='line']")
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		subjectCell := row.Find("td:nth-of-type(2)").First()
		if subjectCell.Length() == 0 {
			slog.WarnContext(ctx, "no subject cell found in row, skipping row")
			return true
		}
		subject := htmlutil.Text(subjectCell)

		var grades []Grade
		row.Find("span.grade-box a").EachWithBreak(func(_ int, badge *goquery.Selection) bool {
			grade, err := processGrade(badge)
			if err != nil {
				// a single malformed badge poisons the whole page; the
				// advisory-text format is a hard dependency
				parseErr = err
				return false
			}
			grades = append(grades, grade)
			return true
		})
		if parseErr != nil {
			return false
		}

		if len(grades) == 0 {
			return true
		}
		subjects = append(subjects, Subject{
			Subject: subject,
			Grades:  grades,
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return subjects, nil
}

func processGrade(badge *goquery.Selection) (Grade, error) {
	info, err := ParseTitle(badge.AttrOr("title", ""))
	if err != nil {
		return Grade{}, err
	}
	return Grade{
		Value: htmlutil.Text(badge),
		Info:  info,
	}, nil
}

// ParseTitle splits a grade badge's advisory text into key/value pairs:
// segments are separated by a literal "<br />" marker, each segment
// splits on its first colon. A segment without a colon fails the whole
// parse.
func ParseTitle(title string) (map[string]string, error) {
	details := map[string]string{}
	for _, part := range strings.Split(title, "<br />") {
		key, value, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("%w: advisory segment without colon: %q", core.ErrMalformedField, part)
		}
		details[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return details, nil
}

// ParseSemester reads a semester block out of a subject row's cells:
// grades at startColumn, then the temporary and final averages in the
// two cells that follow. Non-numeric averages surface as hard failures.
func ParseSemester(cells *goquery.Selection, startColumn int) (Semester, error) {
	var grades []Grade
	var badgeErr error
	cells.Eq(startColumn).Find("span.grade-box a").EachWithBreak(func(_ int, badge *goquery.Selection) bool {
		grade, err := processGrade(badge)
		if err != nil {
			badgeErr = err
			return false
		}
		grades = append(grades, grade)
		return true
	})
	if badgeErr != nil {
		return Semester{}, badgeErr
	}

	tempAverage, err := parseAverage(cells.Eq(startColumn + 1))
	if err != nil {
		return Semester{}, err
	}
	average, err := parseAverage(cells.Eq(startColumn + 2))
	if err != nil {
		return Semester{}, err
	}

	return Semester{
		Grades:      grades,
		TempAverage: tempAverage,
		Average:     average,
	}, nil
}

func parseAverage(cell *goquery.Selection) (float64, error) {
	text := htmlutil.Text(cell)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: average %q is not numeric", core.ErrMalformedField, text)
	}
	return value, nil
}
