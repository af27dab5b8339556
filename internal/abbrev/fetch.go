package abbrev

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSourceURL is the ASHA list of common medical abbreviations.
const DefaultSourceURL = "https://www.asha.org/practice-portal/professional-issues/documentation-in-health-care/common-medical-abbreviations/"

var ErrTableNotFound = errors.New("abbreviation table not found in page")

const maxPageBytes = 16 << 20

// Fetch downloads url and extracts its abbreviation table.
func Fetch(ctx context.Context, client *http.Client, url string) (*Table, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return ParseHTML(io.LimitReader(resp.Body, maxPageBytes))
}

// ParseHTML returns the rows of the first table with classes "table" and
// "table-striped" that have exactly two data cells.
func ParseHTML(r io.Reader) (*Table, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	tbl := findNode(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && hasClass(n, "table") && hasClass(n, "table-striped")
	})
	if tbl == nil {
		return nil, ErrTableNotFound
	}

	t := NewTable()
	walk(tbl, func(n *html.Node) {
		if n.DataAtom != atom.Tr {
			return
		}
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Td {
				cells = append(cells, textOf(c))
			}
		}
		if len(cells) == 2 {
			t.Add(Pair{Abbr: cells[0], FullForm: cells[1]})
		}
	})
	return t, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// textOf joins the text below n, collapsing whitespace.
func textOf(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
