package corpus

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the text content of an HTML fragment. Line breaks are
// turned into spaces so that words around them stay apart.
func StripHTML(text string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("br, p, div, li").Each(func(_ int, s *goquery.Selection) {
		s.BeforeHtml(" ").AfterHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " "), nil
}
