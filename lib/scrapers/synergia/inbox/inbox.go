// Package inbox scrapes the message, recipient and announcement pages
// of the Synergia portal.
package inbox

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

var tracer = otel.Tracer("scrapers/synergia/inbox")

type Attachment struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Message is a fully fetched message including both the plain-text and
// raw-markup renderings of its body.
type Message struct {
	Title    string       `json:"title"`
	Url      string       `json:"url"`
	Id       int          `json:"id"`
	FolderId int          `json:"folder_id"`
	Date     string       `json:"date"`
	User     string       `json:"user"`
	Content  string       `json:"content"`
	Html     string       `json:"html"`
	Read     bool         `json:"read"`
	Files    []Attachment `json:"files"`
}

// Entry is one row of a folder listing.
type Entry struct {
	Id    int    `json:"id"`
	User  string `json:"user"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Read  bool   `json:"read"`
}

type Receiver struct {
	Id   int    `json:"id"`
	User string `json:"user"`
}

type Announcement struct {
	Title   string `json:"title"`
	User    string `json:"user"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

// markers the portal renders instead of content when the session is
// missing or not allowed to see the page
var accessDeniedMarkers = []string{"Brak dostępu", "Loguj"}

// GetMessage fetches and parses a single message page.
func (c Client) GetMessage(ctx context.Context, folderId, id int) (*Message, error) {
	ctx, span := tracer.Start(ctx, "client:GetMessage")
	defer span.End()

	path := fmt.Sprintf("wiadomosci/1/%d/%d", folderId, id)
	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return parseMessage(doc, path, folderId, id)
}

func parseMessage(doc *goquery.Document, path string, folderId, id int) (*Message, error) {
	// check for access problems before any structural parsing
	pageText := doc.Text()
	for _, marker := range accessDeniedMarkers {
		if strings.Contains(pageText, marker) {
			return nil, fmt.Errorf("%w: portal served %q instead of message %d", core.ErrAccessDenied, marker, id)
		}
	}

	row := doc.Find("table.stretch.container-message td.message-folders + td").First()
	if row.Length() == 0 {
		return nil, fmt.Errorf("%w: message content row", core.ErrStructureNotFound)
	}

	headerTable := row.ChildrenFiltered("table").First()
	if headerTable.Length() == 0 {
		return nil, fmt.Errorf("%w: message header table", core.ErrStructureNotFound)
	}
	header := core.MapTableValues(headerTable, []string{"user", "title", "date"})

	attachments, err := parseAttachments(row)
	if err != nil {
		return nil, err
	}

	content := row.Find("div.container-message-content").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("%w: message body", core.ErrStructureNotFound)
	}
	rawHtml, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize message body: %v", core.ErrStructureNotFound, err)
	}

	statusCell := row.Find("td.left").First()
	if statusCell.Length() == 0 {
		return nil, fmt.Errorf("%w: message status cell", core.ErrStructureNotFound)
	}

	return &Message{
		Title:    header.GetOr("title", ""),
		Url:      path,
		Id:       id,
		FolderId: folderId,
		Date:     header.GetOr("date", ""),
		User:     header.GetOr("user", ""),
		Content:  htmlutil.Text(content),
		Html:     rawHtml,
		Read:     !strings.Contains(htmlutil.Text(statusCell), "NIE"),
		Files:    attachments,
	}, nil
}

// parseAttachments scans for filetype icons; each one sits inside an
// anchor whose display text is the file name and whose onclick handler
// embeds the download path as a backslash-escaped quoted string.
func parseAttachments(row *goquery.Selection) ([]Attachment, error) {
	var attachments []Attachment
	var parseErr error
	row.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := img.AttrOr("src", "")
		if !strings.Contains(src, "filetype") {
			return true
		}
		anchor := img.Closest("a")
		if anchor.Length() == 0 {
			parseErr = fmt.Errorf("%w: attachment icon without anchor", core.ErrStructureNotFound)
			return false
		}
		onclick := anchor.AttrOr("onclick", "")
		parts := strings.Split(onclick, `"`)
		if len(parts) < 2 {
			parseErr = fmt.Errorf("%w: attachment handler without quoted path: %q", core.ErrMalformedField, onclick)
			return false
		}
		path := strings.Trim(strings.ReplaceAll(parts[1], `\`, ""), "/")
		attachments = append(attachments, Attachment{
			Name: htmlutil.Text(anchor),
			Path: path,
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return attachments, nil
}

// GetAttachment downloads an attachment previously listed on a message.
func (c Client) GetAttachment(ctx context.Context, file Attachment) ([]byte, error) {
	return c.Core.GetFile(ctx, file.Path)
}

// RemoveMessage posts the deletion confirmation for a message and
// returns the portal's confirmation banner text.
func (c Client) RemoveMessage(ctx context.Context, id int) (string, error) {
	ctx, span := tracer.Start(ctx, "client:RemoveMessage")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodPost, "wiadomosci", map[string]string{
		"tak":        "Tak",
		"id":         "1",
		"Wid":        strconv.Itoa(id),
		"poprzednia": "6",
	})
	if err != nil {
		return "", err
	}
	return confirmMessage(doc)
}

// SendMessage sends a message to a single recipient and returns the
// portal's confirmation banner text. The compose page is fetched first
// to prime server-side state; note that no token from it is captured or
// forwarded, mirroring the portal client this was ported from.
func (c Client) SendMessage(ctx context.Context, userId int, title, content string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:SendMessage")
	defer span.End()

	_, err := c.Core.Request(ctx, http.MethodGet, "wiadomosci/2/5", nil)
	if err != nil {
		return "", err
	}

	doc, err := c.Core.RequestDocument(ctx, http.MethodPost, "wiadomosci/5", map[string]string{
		"DoKogo":     strconv.Itoa(userId),
		"temat":      title,
		"tresc":      content,
		"poprzednia": "6",
		"wyslij":     "Wy%C5%9Blij",
	})
	if err != nil {
		return "", err
	}
	return confirmMessage(doc)
}

// confirmMessage extracts the green confirmation banner the portal
// renders after a successful write action.
func confirmMessage(doc *goquery.Document) (string, error) {
	banner := doc.Find("div.green.container").First()
	if banner.Length() == 0 {
		return "", fmt.Errorf("%w: no confirmation banner", core.ErrStructureNotFound)
	}
	text := htmlutil.Text(banner)
	if text == "" {
		return "", fmt.Errorf("%w: empty confirmation banner", core.ErrStructureNotFound)
	}
	return text, nil
}

// ListReceivers posts a group selection and scrapes the recipient rows
// the portal renders for it.
func (c Client) ListReceivers(ctx context.Context, group int) ([]Receiver, error) {
	ctx, span := tracer.Start(ctx, "client:ListReceivers")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodPost, "wiadomosci/1/5", map[string]string{
		"adresat": strconv.Itoa(group),
	})
	if err != nil {
		return nil, err
	}
	return parseReceivers(doc)
}

func parseReceivers(doc *goquery.Document) ([]Receiver, error) {
	receivers := []Receiver{}
	var parseErr error
	rows := doc.Find("td.message-recipients table.message-recipients-detail tr[class*='line']")
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		value := row.Find(`input[name="DoKogo[]"]`).First().AttrOr("value", "")
		id, err := strconv.Atoi(value)
		if err != nil {
			parseErr = fmt.Errorf("%w: recipient id %q: %v", core.ErrMalformedField, value, err)
			return false
		}
		receivers = append(receivers, Receiver{
			Id:   id,
			User: htmlutil.Text(row.Find("label").First()),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return receivers, nil
}

// ListInbox lists the messages of one folder. Unread status comes from
// an inline bold-style marker on the sender cell; fragile, but it is
// the only signal the portal exposes.
func (c Client) ListInbox(ctx context.Context, folderId int) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "client:ListInbox")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, fmt.Sprintf("wiadomosci/%d", folderId), nil)
	if err != nil {
		return nil, err
	}

	entries, err := parseInbox(doc)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "listed inbox", "folder", folderId, "count", len(entries))
	return entries, nil
}

func parseInbox(doc *goquery.Document) ([]Entry, error) {
	entries := []Entry{}
	var parseErr error
	rows := doc.Find("table.container-message table.decorated.stretch tbody tr")
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 5 {
			parseErr = fmt.Errorf("%w: message row %d has %d cells", core.ErrStructureNotFound, i, cells.Length())
			return false
		}

		href := cells.Eq(3).Find("a").First().AttrOr("href", "")
		segments := strings.Split(href, "/")
		if len(segments) < 5 {
			parseErr = fmt.Errorf("%w: message link %q has no id segment", core.ErrMalformedField, href)
			return false
		}
		id, err := strconv.Atoi(segments[4])
		if err != nil {
			parseErr = fmt.Errorf("%w: message id %q: %v", core.ErrMalformedField, segments[4], err)
			return false
		}

		entries = append(entries, Entry{
			Id:    id,
			User:  htmlutil.Text(cells.Eq(2)),
			Title: htmlutil.Text(cells.Eq(3)),
			Date:  htmlutil.Text(cells.Eq(4)),
			Read:  !strings.Contains(cells.Eq(2).AttrOr("style", ""), "font-weight: bold;"),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return entries, nil
}

// ListAnnouncements fetches the announcement board.
func (c Client) ListAnnouncements(ctx context.Context) ([]Announcement, error) {
	ctx, span := tracer.Start(ctx, "client:ListAnnouncements")
	defer span.End()

	doc, err := c.Core.RequestDocument(ctx, http.MethodGet, "ogloszenia", nil)
	if err != nil {
		return nil, err
	}
	return parseAnnouncements(doc)
}

func parseAnnouncements(doc *goquery.Document) ([]Announcement, error) {
	announcements := []Announcement{}
	var parseErr error
	blocks := doc.Find("div#body div.container-background table.decorated")
	blocks.EachWithBreak(func(i int, block *goquery.Selection) bool {
		cells := block.Find("td")
		if cells.Length() < 4 {
			parseErr = fmt.Errorf("%w: announcement block %d has %d cells", core.ErrStructureNotFound, i, cells.Length())
			return false
		}
		announcements = append(announcements, Announcement{
			Title:   htmlutil.Text(block.Find("thead").First()),
			User:    htmlutil.Text(cells.Eq(1)),
			Date:    htmlutil.Text(cells.Eq(2)),
			Content: htmlutil.Text(cells.Eq(3)),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return announcements, nil
}
