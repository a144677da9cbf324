package parser

// Selectors locates a job tile and its fields in the rendered search page.
// Field selectors are evaluated relative to a single tile.
type Selectors struct {
	Listing         string
	Title           string
	Link            string
	Description     string
	Posted          string
	Location        string
	Budget          string
	ClientSpent     string
	PaymentVerified string
	Rating          string
	ExperienceLevel string
	Proposals       string
	Skills          string
}

func DefaultSelectors() Selectors {
	return Selectors{
		Listing:         "article.job-tile",
		Title:           "h2.job-tile-title",
		Link:            "h2 a",
		Description:     `div[data-test="JobDescription"] p`,
		Posted:          `span[data-test="job-pubilshed-date"]`, // sic, matches the site markup
		Location:        `div[data-test="location"]`,
		Budget:          `li[data-test="is-fixed-price"], li[data-test="job-type-label"]`,
		ClientSpent:     `li[data-test="total-spent"]`,
		PaymentVerified: `div[data-test="payment-verified"] svg path[fill]`,
		Rating:          "div.air3-rating-value-text",
		ExperienceLevel: `li[data-test="experience-level"] strong`,
		Proposals:       `li[data-test="proposals-tier"]`,
		Skills:          `div[data-test="TokenClamp JobAttrs"] span`,
	}
}
