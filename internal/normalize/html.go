// Package normalize turns raw Drive and Sheets payloads into clean values.
package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractBody keeps the document's head stylesheet, inlined as a style tag,
// followed by the body's inner markup. Everything else in the head and the
// outer html/body tags are dropped.
func ExtractBody(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	// Text, not Html: css must not come back entity-escaped
	style := doc.Find("head style").First().Text()
	body, err := doc.Find("body").First().Html()
	if err != nil {
		return "", fmt.Errorf("render body: %w", err)
	}
	if style == "" {
		return body, nil
	}
	return `<style type="text/css">` + style + `</style>` + body, nil
}
