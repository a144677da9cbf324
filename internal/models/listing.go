package models

import (
	"encoding/json"
)

// TimestampLayout renders instants the way JavaScript's toISOString does.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// JobListing represents a single job tile scraped from the search results page
type JobListing struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Link            string   `json:"link"`
	Description     string   `json:"description"`
	Posted          string   `json:"posted"`
	Location        string   `json:"location"`
	Budget          string   `json:"budget"`
	ClientSpent     string   `json:"clientSpent"`
	PaymentVerified bool     `json:"paymentVerified"`
	ClientRating    float64  `json:"clientRating"`
	ExperienceLevel string   `json:"experienceLevel"`
	Proposals       string   `json:"proposals"`
	Skills          []string `json:"skills"`
	Timestamp       string   `json:"timestamp"`
}

// ToJSON converts the listing to JSON. Nil skills encode as [] and the
// receiver is left untouched.
func (l *JobListing) ToJSON() ([]byte, error) {
	out := *l
	if out.Skills == nil {
		out.Skills = []string{}
	}
	return json.Marshal(&out)
}

// FromJSON creates a listing from JSON data
func FromJSON(data []byte) (*JobListing, error) {
	var listing JobListing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, err
	}
	if listing.Skills == nil {
		listing.Skills = []string{}
	}
	return &listing, nil
}
