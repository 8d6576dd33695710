package domain

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"torgmailru/client/internal/normalize"
)

// Decode maps a normalized API object onto one of the catalog types
func Decode[T any](node normalize.Node) (T, error) {
	var out T
	if node.Kind() != normalize.KindObject {
		return out, fmt.Errorf("decode %T: node is a JSON %s, not an object", out, node.Kind())
	}
	if err := node.Decode(&out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}

// PlainText drops HTML markup from a description, keeping the text content
// with whitespace collapsed. Input that is not markup is returned collapsed.
func PlainText(html string) string {
	if !strings.ContainsAny(html, "<&") {
		return normalize.CollapseWhitespace(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalize.CollapseWhitespace(html)
	}

	doc.Find("br, p, li, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// PlainDescription is the offer description without markup
func (o Offer) PlainDescription() string {
	return PlainText(o.Description)
}

// PlainDescription is the model description without markup
func (m Model) PlainDescription() string {
	return PlainText(m.Description)
}
