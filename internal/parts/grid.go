package parts

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type cell struct {
	text    string
	rowSpan int
}

// grid is one table, HTML or spreadsheet, reduced to rows of text cells.
type grid struct {
	rows [][]cell
}

func gridsFromHTML(body string) ([]grid, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := []grid{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		g := grid{}
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			// rows of nested tables belong to those tables
			if !row.Closest("table").IsSelection(table) {
				return
			}
			cells := []cell{}
			row.ChildrenFiltered("th,td").Each(func(_ int, c *goquery.Selection) {
				cells = append(cells, cell{text: strings.TrimSpace(nodeText(c)), rowSpan: spanAttr(c)})
			})
			if len(cells) > 0 {
				g.rows = append(g.rows, cells)
			}
		})
		if len(g.rows) > 0 {
			out = append(out, g)
		}
	})
	return out, nil
}

func gridFromSheet(sheet Sheet) grid {
	g := grid{}
	for _, row := range sheet.Rows {
		cells := make([]cell, 0, len(row))
		empty := true
		for _, v := range row {
			v = strings.TrimSpace(v)
			if v != "" {
				empty = false
			}
			cells = append(cells, cell{text: v, rowSpan: 1})
		}
		if !empty {
			g.rows = append(g.rows, cells)
		}
	}
	return g
}

// htmlToText flattens an HTML body into lines for the freeform parser.
func htmlToText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script,style,head").Remove()
	return nodeText(doc.Selection)
}

// nodeText is Selection.Text with line breaks kept for <br>, block elements and table cells,
// so multi-line alternate cells can be tokenized.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.Data {
			case "br":
				b.WriteString("\n")
				return
			case "td", "th":
				b.WriteString("\t")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "tr", "li", "table", "h1", "h2", "h3", "h4":
				b.WriteString("\n")
			}
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.ReplaceAll(b.String(), "\u00A0", " ")
}

func spanAttr(sel *goquery.Selection) int {
	v, ok := sel.Attr("rowspan")
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
