package inbox

import (
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

func TestParseMessageAccessDenied(t *testing.T) {
	// access markers win over any other page content, even a page that
	// would otherwise parse
	doc := parseFixture(t, `<html><body>
		<a>Loguj</a>
		<table class="stretch container-message"><tr>
			<td class="message-folders"></td><td>content</td>
		</tr></table>
	</body></html>`)

	_, err := parseMessage(doc, "wiadomosci/1/5/1", 5, 1)
	require.ErrorIs(t, err, core.ErrAccessDenied)
}

func TestParseMessageMissingContentRow(t *testing.T) {
	doc := parseFixture(t, `<html><body><div>nothing useful</div></body></html>`)
	_, err := parseMessage(doc, "wiadomosci/1/5/1", 5, 1)
	require.ErrorIs(t, err, core.ErrStructureNotFound)
}

func TestParseMessageMissingHeaderTable(t *testing.T) {
	doc := parseFixture(t, `<html><body>
		<table class="stretch container-message"><tr>
			<td class="message-folders"></td>
			<td><div>no nested table</div></td>
		</tr></table>
	</body></html>`)

	_, err := parseMessage(doc, "wiadomosci/1/5/1", 5, 1)
	require.ErrorIs(t, err, core.ErrStructureNotFound)
}

const messagePage = `<html><body>
<table class="stretch container-message"><tr>
	<td class="message-folders"></td>
	<td>
		<table><tbody>
			<tr><td>Nadawca</td><td>Jan Nowak</td></tr>
			<tr><td>Temat</td><td>Wywiadówka</td></tr>
			<tr><td>Wysłano</td><td>2024-03-01 12:30:00</td></tr>
		</tbody></table>
		<table><tr>
			<td class="left">Przeczytano: NIE</td>
		</tr></table>
		<a onclick="otworz_w_nowym_oknie(&quot;\/wiadomosci\/pobierz_zalacznik\/4\/123&quot;,&quot;o2&quot;,420,130)">
			plan.pdf
			<img src="/images/filetype_pdf.png" />
		</a>
		<div class="container-message-content">Zapraszam na  wywiadówkę.</div>
	</td>
</tr></table>
</body></html>`

func TestParseMessage(t *testing.T) {
	doc := parseFixture(t, messagePage)
	message, err := parseMessage(doc, "wiadomosci/1/5/7777", 5, 7777)
	require.NoError(t, err)

	require.Equal(t, 7777, message.Id)
	require.Equal(t, 5, message.FolderId)
	require.Equal(t, "wiadomosci/1/5/7777", message.Url)
	require.Equal(t, "Jan Nowak", message.User)
	require.Equal(t, "Wywiadówka", message.Title)
	require.Equal(t, "2024-03-01 12:30:00", message.Date)
	require.False(t, message.Read)
	require.Equal(t, "Zapraszam na wywiadówkę.", message.Content)
	require.Contains(t, message.Html, "container-message-content")
	require.Equal(t, []Attachment{
		{Name: "plan.pdf", Path: "wiadomosci/pobierz_zalacznik/4/123"},
	}, message.Files)
}

func TestConfirmMessage(t *testing.T) {
	doc := parseFixture(t, `<html><body>
		<div class="green container">Wiadomość została usunięta</div>
	</body></html>`)
	text, err := confirmMessage(doc)
	require.NoError(t, err)
	require.Equal(t, "Wiadomość została usunięta", text)
}

func TestConfirmMessageMissingBanner(t *testing.T) {
	doc := parseFixture(t, `<html><body><div>no banner</div></body></html>`)
	_, err := confirmMessage(doc)
	require.ErrorIs(t, err, core.ErrStructureNotFound)
}

const inboxPage = `<html><body>
<table class="container-message"><tr><td>
	<table class="decorated stretch"><tbody>
		<tr>
			<td><input type="checkbox" /></td>
			<td></td>
			<td>Jan Nowak</td>
			<td><a href="/wiadomosci/1/5/12345678">Wywiadówka</a></td>
			<td>2024-03-01</td>
		</tr>
		<tr>
			<td><input type="checkbox" /></td>
			<td></td>
			<td style="font-weight: bold;">Anna Wiśniewska</td>
			<td><a href="/wiadomosci/1/5/12345679">Sprawdzian</a></td>
			<td>2024-03-02</td>
		</tr>
	</tbody></table>
</td></tr></table>
</body></html>`

func TestParseInbox(t *testing.T) {
	doc := parseFixture(t, inboxPage)
	entries, err := parseInbox(doc)
	require.NoError(t, err)

	require.Equal(t, []Entry{
		{Id: 12345678, User: "Jan Nowak", Title: "Wywiadówka", Date: "2024-03-01", Read: true},
		{Id: 12345679, User: "Anna Wiśniewska", Title: "Sprawdzian", Date: "2024-03-02", Read: false},
	}, entries)
}

func TestParseInboxShortRow(t *testing.T) {
	doc := parseFixture(t, `<html><body>
	<table class="container-message"><tr><td>
		<table class="decorated stretch"><tbody>
			<tr><td>lonely</td></tr>
		</tbody></table>
	</td></tr></table>
	</body></html>`)

	_, err := parseInbox(doc)
	require.ErrorIs(t, err, core.ErrStructureNotFound)
}

func TestParseReceivers(t *testing.T) {
	doc := parseFixture(t, `<html><body>
	<table><tr><td class="message-recipients">
		<table class="message-recipients-detail">
			<tr class="line0">
				<td><input name="DoKogo[]" value="101" /><label>Jan Nowak</label></td>
			</tr>
			<tr class="line1">
				<td><input name="DoKogo[]" value="102" /><label>Anna Wiśniewska</label></td>
			</tr>
		</table>
	</td></tr></table>
	</body></html>`)

	receivers, err := parseReceivers(doc)
	require.NoError(t, err)
	require.Equal(t, []Receiver{
		{Id: 101, User: "Jan Nowak"},
		{Id: 102, User: "Anna Wiśniewska"},
	}, receivers)
}

func TestParseReceiversEmptyPage(t *testing.T) {
	doc := parseFixture(t, `<html><body><div></div></body></html>`)
	receivers, err := parseReceivers(doc)
	require.NoError(t, err)
	require.Empty(t, receivers)
}

func TestParseAnnouncements(t *testing.T) {
	doc := parseFixture(t, `<html><body><div id="body"><div class="container-background">
	<table class="decorated">
		<thead><tr><td colspan="2">Dzień sportu</td></tr></thead>
		<tbody>
			<tr><td>Jan Nowak</td></tr>
			<tr><td>2024-05-10</td></tr>
			<tr><td>Zapraszamy wszystkich uczniów.</td></tr>
		</tbody>
	</table>
	</div></div></body></html>`)

	announcements, err := parseAnnouncements(doc)
	require.NoError(t, err)
	require.Len(t, announcements, 1)
	require.Equal(t, Announcement{
		Title:   "Dzień sportu",
		User:    "Jan Nowak",
		Date:    "2024-05-10",
		Content: "Zapraszamy wszystkich uczniów.",
	}, announcements[0])
}
