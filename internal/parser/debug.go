package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const bodySampleLen = 500

// blockingKeywords hint that the site served an interstitial instead of results.
var blockingKeywords = []string{
	"captcha",
	"access denied",
	"just a moment",
	"cloudflare",
	"verify you are a human",
	"robot",
}

// SelectorCount is the number of matches for one selector in a snapshot.
type SelectorCount struct {
	Selector string
	Count    int
}

// Diagnosis describes a page snapshot that produced no listings.
type Diagnosis struct {
	Title      string
	Selectors  []SelectorCount
	Blocked    []string
	BodySample string
}

// Diagnose analyzes page structure for debugging. It counts matches for the
// listing selectors and scans the body text for signs of bot protection.
func Diagnose(html string, selectors Selectors) (*Diagnosis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	d := &Diagnosis{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	for _, sel := range []string{
		selectors.Listing,
		selectors.Title,
		selectors.Link,
		selectors.Skills,
		"article",
		"[data-test]",
	} {
		d.Selectors = append(d.Selectors, SelectorCount{
			Selector: sel,
			Count:    doc.Find(sel).Length(),
		})
	}

	body := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	lower := strings.ToLower(body + " " + d.Title)
	for _, keyword := range blockingKeywords {
		if strings.Contains(lower, keyword) {
			d.Blocked = append(d.Blocked, keyword)
		}
	}

	d.BodySample = truncate(body, bodySampleLen)

	return d, nil
}

// LikelyBlocked reports whether any blocking keyword was found.
func (d *Diagnosis) LikelyBlocked() bool {
	return len(d.Blocked) > 0
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
