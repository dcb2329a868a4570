package seo

import (
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// page holds the SEO-relevant signals extracted from one HTML document.
type page struct {
	rel            string
	title          string
	lang           string
	description    string
	hasDescription bool
	robots         string
	hasCanonical   bool
	h1Count        int
	imgMissingAlt  int
	links          []string
}

// parsePage walks the document tree once and collects page signals.
func parsePage(rel string, r io.Reader) (*page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, eris.Wrapf(err, "seo: parse %s", rel)
	}

	p := &page{rel: rel}
	seen := make(map[string]bool)
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html":
				p.lang = strings.TrimSpace(attr(n, "lang"))
			case "title":
				if p.title == "" {
					p.title = strings.TrimSpace(textContent(n))
				}
			case "meta":
				switch strings.ToLower(attr(n, "name")) {
				case "description":
					p.hasDescription = true
					p.description = strings.TrimSpace(attr(n, "content"))
				case "robots":
					p.robots = strings.ToLower(attr(n, "content"))
				}
			case "link":
				if hasToken(attr(n, "rel"), "canonical") && strings.TrimSpace(attr(n, "href")) != "" {
					p.hasCanonical = true
				}
			case "h1":
				p.h1Count++
			case "img":
				if _, ok := lookupAttr(n, "alt"); !ok {
					p.imgMissingAlt++
				}
			case "a":
				href := strings.TrimSpace(attr(n, "href"))
				if href != "" && !seen[href] {
					seen[href] = true
					p.links = append(p.links, href)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return p, nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func hasToken(list, token string) bool {
	for _, f := range strings.Fields(strings.ToLower(list)) {
		if f == token {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return sb.String()
}
