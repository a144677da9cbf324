package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"upwork-scraper/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const (
	postedPrefix    = "Posted"
	proposalsPrefix = "Proposals:"
	trackingSuffix  = "/?"
	idSeparator     = "~"
)

// leadingFloat matches the numeric prefix a lenient float parse would accept.
var leadingFloat = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// Extractor turns a rendered search page into job listings. Every field is
// optional: a missing element yields the field's zero value, never an error.
type Extractor struct {
	BaseURL   string
	Selectors Selectors

	// Now stamps each listing; defaults to time.Now.
	Now func() time.Time
}

func NewExtractor(baseURL string) *Extractor {
	return &Extractor{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Selectors: DefaultSelectors(),
		Now:       time.Now,
	}
}

// Extract parses every listing tile in html. A page without tiles yields an
// empty, non-nil slice.
func (e *Extractor) Extract(html string) ([]*models.JobListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	listings := make([]*models.JobListing, 0)
	doc.Find(e.Selectors.Listing).Each(func(_ int, tile *goquery.Selection) {
		listings = append(listings, e.parseTile(tile))
	})

	return listings, nil
}

// parseTile extracts data from a single listing tile
func (e *Extractor) parseTile(tile *goquery.Selection) *models.JobListing {
	text := func(selector string) string {
		return strings.TrimSpace(tile.Find(selector).First().Text())
	}

	var link string
	if anchor := tile.Find(e.Selectors.Link).First(); anchor.Length() > 0 {
		href, _ := anchor.Attr("href")
		link = canonicalLink(e.BaseURL + href)
	}

	skills := make([]string, 0)
	tile.Find(e.Selectors.Skills).Each(func(_ int, s *goquery.Selection) {
		skills = append(skills, strings.TrimSpace(s.Text()))
	})

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	return &models.JobListing{
		ID:              listingID(link),
		Title:           text(e.Selectors.Title),
		Link:            link,
		Description:     text(e.Selectors.Description),
		Posted:          stripPrefix(text(e.Selectors.Posted), postedPrefix),
		Location:        text(e.Selectors.Location),
		Budget:          text(e.Selectors.Budget),
		ClientSpent:     text(e.Selectors.ClientSpent),
		PaymentVerified: tile.Find(e.Selectors.PaymentVerified).Length() > 0,
		ClientRating:    parseRating(text(e.Selectors.Rating)),
		ExperienceLevel: text(e.Selectors.ExperienceLevel),
		Proposals:       stripPrefix(text(e.Selectors.Proposals), proposalsPrefix),
		Skills:          skills,
		Timestamp:       now().UTC().Format(models.TimestampLayout),
	}
}

// canonicalLink drops the tracking suffix starting at the first "/?".
func canonicalLink(link string) string {
	if i := strings.Index(link, trackingSuffix); i >= 0 {
		return link[:i]
	}
	return link
}

// listingID is the segment after the last "~" of a canonical link.
func listingID(link string) string {
	i := strings.LastIndex(link, idSeparator)
	if i < 0 {
		return ""
	}
	return link[i+len(idSeparator):]
}

func stripPrefix(s, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, prefix))
}

func parseRating(s string) float64 {
	match := leadingFloat.FindString(s)
	if match == "" {
		return 0
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return rating
}
