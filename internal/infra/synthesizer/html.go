package synthesizer

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ensureTitleHeader checks that the generated article carries an <h1>
// title header and prepends one when the model leaves it out. Models
// follow the prompt template most of the time, but smaller ones
// occasionally skip straight to the section headings.
func ensureTitleHeader(content, title string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err == nil && doc.Find("h1").Length() > 0 {
		return content
	}
	header := fmt.Sprintf("<h1><b><u>%s</u></b></h1>\n", html.EscapeString(title))
	return header + content
}
