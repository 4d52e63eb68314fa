package report

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ToText returns the readable text of a report body. The NWS product page
// wraps the bulletin in <pre class="glossaryProduct">; that block is preferred
// when present, otherwise the text of the whole document is used. Bodies that
// do not look like HTML are returned as they are.
func ToText(raw string) string {
	if !looksLikeHTML(raw) {
		return raw
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	if product := doc.Find("pre.glossaryProduct"); product.Length() > 0 {
		return product.First().Text()
	}

	if pre := doc.Find("pre"); pre.Length() > 0 {
		parts := make([]string, 0, pre.Length())
		pre.Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, s.Text())
		})

		return strings.Join(parts, "\n")
	}

	doc.Find("script, style").Remove()

	return doc.Text()
}

func looksLikeHTML(raw string) bool {
	head := strings.ToLower(strings.TrimSpace(raw))
	if len(head) > 512 {
		head = head[:512]
	}

	return strings.HasPrefix(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "<pre") ||
		strings.Contains(head, "<body")
}
