package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
	// block elements must not glue the words of neighbouring blocks together
	if node.Type == html.ElementNode && blockElements[node.Data] {
		buffer.WriteByte(' ')
	}
}

var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true,
	"td": true, "th": true, "tr": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"label": true, "option": true,
}

// CleanText drops non-printable runes and collapses every run of whitespace
// (including non-breaking spaces) into a single space.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch {
		case unicode.IsSpace(c):
			b.WriteRune(' ')
		case unicode.IsPrint(c):
			b.WriteRune(c)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Text returns the cleaned text of every node in the selection.
func Text(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		b.WriteString(GetText(n))
		b.WriteByte(' ')
	}
	return CleanText(b.String())
}

var entityReplacer = strings.NewReplacer(
	"&#39;", "'",
	"&#039;", "'",
	"&apos;", "'",
	"&nbsp;", " ",
	"&#160;", " ",
	"\u00a0", " ",
	`\r\n`, " ",
	`\n`, " ",
	`\t`, " ",
	`\r`, " ",
)

// Normalize decodes the handful of entities the portal is known to emit
// and flattens literal backslash escapes that sometimes arrive pre-escaped.
// &amp; is decoded last so "&amp;nbsp;" does not turn into a space.
func Normalize(raw string) string {
	return strings.ReplaceAll(entityReplacer.Replace(raw), "&amp;", "&")
}

// Parse builds a document out of raw html, it never fails: unparsable input
// yields an empty document.
func Parse(raw string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	return doc
}

// OwnRows returns the rows that belong to the given table, rows of tables
// nested inside its cells are excluded.
func OwnRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// Cells returns the cleaned text of every td/th directly under the row.
func Cells(tr *goquery.Selection) []string {
	cells := tr.ChildrenFiltered("td, th")
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, cell *goquery.Selection) {
		out = append(out, Text(cell))
	})
	return out
}

// IsHeaderRow reports whether the row consists only of th cells.
func IsHeaderRow(tr *goquery.Selection) bool {
	cells := tr.ChildrenFiltered("td, th")
	if cells.Length() == 0 {
		return false
	}
	return cells.Length() == tr.ChildrenFiltered("th").Length()
}
