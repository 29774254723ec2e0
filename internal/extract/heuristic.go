package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Heuristic extracts readable text by walking the parsed tree. It prefers
// <main>, then <article>, then <body>, keeps headings, paragraphs, list items
// and preformatted blocks, and skips navigation, footers and consent banners.
func Heuristic(input []byte) (title string, text string) {
	root, err := html.Parse(bytes.NewReader(input))
	if err != nil || root == nil {
		return "", ""
	}
	title = strings.TrimSpace(pageTitle(root))

	var content *html.Node
	for _, tag := range []string{"main", "article", "body"} {
		if content = firstElement(root, tag); content != nil {
			break
		}
	}
	if content == nil {
		return title, ""
	}
	var b strings.Builder
	walkText(&b, content, false)
	return title, tidy(b.String())
}

func pageTitle(root *html.Node) string {
	head := firstElement(root, "head")
	if head == nil {
		return ""
	}
	t := firstElement(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return t.FirstChild.Data
}

func firstElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

var blockTags = map[string]bool{
	"p": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func walkText(b *strings.Builder, n *html.Node, pre bool) {
	var name string
	if n.Type == html.ElementNode {
		if looksLikeConsentBanner(n) {
			return
		}
		name = strings.ToLower(n.Data)
		switch {
		case name == "script", name == "style", name == "noscript", name == "nav",
			name == "footer", name == "aside", name == "iframe", name == "form":
			return
		case name == "pre", name == "code":
			pre = true
		case name == "br", name == "hr", blockTags[name]:
			b.WriteString("\n")
		}
	}
	if n.Type == html.TextNode {
		data := n.Data
		if !pre {
			data = strings.NewReplacer("\t", " ", "\r", " ").Replace(data)
		}
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(b, c, pre)
	}
	switch name {
	case "p", "h1", "h2", "h3", "h4", "h5", "h6":
		b.WriteString("\n\n")
	case "li", "pre", "code":
		b.WriteString("\n")
	}
}

var consentMarkers = []string{"cookie", "consent", "gdpr"}

func looksLikeConsentBanner(n *html.Node) bool {
	for _, attr := range n.Attr {
		key := strings.ToLower(attr.Key)
		if key != "id" && key != "class" && key != "role" && key != "aria-label" && !strings.HasPrefix(key, "data-") {
			continue
		}
		val := strings.ToLower(attr.Val)
		for _, m := range consentMarkers {
			if strings.Contains(val, m) {
				return true
			}
		}
	}
	return false
}

// tidy trims every line, collapses runs of spaces and keeps at most one
// blank line between paragraphs.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" && (len(out) == 0 || out[len(out)-1] == "") {
			continue
		}
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
