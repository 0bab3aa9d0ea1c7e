package goquery

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/carecost"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Ensure Normalizer implements carecost.Normalizer at compile time.
var _ carecost.Normalizer = (*Normalizer)(nil)

// noise is removed before text and tables are read.
const noise = "script, style, meta, noscript, header, footer"

// Normalizer parses HTML with goquery and reduces it to page text.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize parses the response body once. Anchors are collected from the
// whole document, header and footer navigation included. Text and tables are
// read after noise nodes are removed.
func (n *Normalizer) Normalize(r *carecost.Response) (*carecost.Page, error) {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil, carecost.Errorf(carecost.EINVALID, "empty HTML input")
	}

	var body io.Reader = bytes.NewReader(r.Body)
	if decoded, err := charset.NewReader(body, r.ContentType); err == nil {
		body = decoded
	} else {
		body = bytes.NewReader(r.Body)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, carecost.Errorf(carecost.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &carecost.Page{
		URL:   r.URL,
		Title: collapse(doc.Find("title").First().Text()),
	}
	if page.Title == "" {
		page.Title = carecost.DefaultTitle
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		page.Anchors = append(page.Anchors, carecost.Anchor{
			Href: strings.TrimSpace(href),
			Text: nodeText(sel),
		})
	})

	doc.Find(noise).Remove()

	doc.Find("table").Each(func(_ int, sel *goquery.Selection) {
		if t, ok := readTable(sel); ok {
			page.Tables = append(page.Tables, t)
		}
	})

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	page.Text = nodeText(root)
	return page, nil
}

// readTable returns the cell text of a table. The first row made only of
// th cells becomes the header.
func readTable(sel *goquery.Selection) (carecost.Table, bool) {
	var t carecost.Table
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("th, td")
		if cells.Length() == 0 {
			return
		}
		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, nodeText(c))
		})
		if t.Header == nil && cells.Length() == cells.Filter("th").Length() {
			t.Header = row
			return
		}
		t.Rows = append(t.Rows, row)
	})
	return t, t.Header != nil || len(t.Rows) > 0
}

// nodeText joins the text nodes under sel with spaces and collapses
// whitespace, so adjacent cells and blocks do not run together.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return collapse(b.String())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
