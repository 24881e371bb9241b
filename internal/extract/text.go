package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	digitsRE  = regexp.MustCompile(`\d+`)
	decimalRE = regexp.MustCompile(`\d+[\.,]\d+`)
)

// strippedStrings returns the selection's non-empty text nodes in document
// order, each with surrounding and internal whitespace collapsed.
func strippedStrings(s *goquery.Selection) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				out = append(out, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return out
}

// joinedText joins the selection's stripped text nodes with single spaces.
// Unlike goquery's Text(), this keeps a separator between adjacent
// elements, which the row pattern matching depends on.
func joinedText(s *goquery.Selection) string {
	return strings.Join(strippedStrings(s), " ")
}

// ownText returns only the text directly inside the element, ignoring
// child elements.
func ownText(s *goquery.Selection) string {
	var parts []string
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				if t := strings.Join(strings.Fields(c.Data), " "); t != "" {
					parts = append(parts, t)
				}
			}
		}
	}
	return strings.Join(parts, " ")
}

// parseInt extracts an integer from a token like "1,234" or "12 left".
// Returns nil when the token carries no digits.
func parseInt(token string) *int {
	if token == "" {
		return nil
	}
	token = strings.ReplaceAll(token, ",", "")
	if v, err := strconv.Atoi(token); err == nil {
		return &v
	}
	if m := digitsRE.FindString(token); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			return &v
		}
	}
	return nil
}

// parseFloat extracts a float from a token, tolerating a comma decimal
// separator ("172,34").
func parseFloat(token string) *float64 {
	if token == "" {
		return nil
	}
	cleaned := strings.ReplaceAll(strings.ReplaceAll(token, " ", ""), ",", ".")
	if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return &v
	}
	if m := decimalRE.FindString(token); m != "" {
		if v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64); err == nil {
			return &v
		}
	}
	return nil
}
