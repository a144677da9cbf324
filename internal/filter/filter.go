// Package filter narrows scraped listings by skills, location and budget.
// Every active criterion must hold; an inactive criterion keeps everything.
package filter

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"upwork-scraper/internal/models"

	"golang.org/x/text/cases"
)

// budgetAmount picks the first dollar amount. "$500-$1,000" yields 500.
var budgetAmount = regexp.MustCompile(`\$(\d+)`)

type Criteria struct {
	// Skills is a set of case-folded skill names. Empty means inactive.
	Skills   map[string]struct{}
	Location string

	MinBudget *int
	MaxBudget *int
}

// ParseSkills splits a comma-separated list into a case-folded set. Blank
// entries are dropped; nil is returned when nothing remains.
func ParseSkills(csv string) map[string]struct{} {
	var set map[string]struct{}
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{})
		}
		set[fold(s)] = struct{}{}
	}
	return set
}

// Active reports whether any criterion would exclude listings.
func (c Criteria) Active() bool {
	return len(c.Skills) > 0 || c.Location != "" || c.MinBudget != nil || c.MaxBudget != nil
}

// Apply returns the listings matching every active criterion, in input order.
func Apply(listings []*models.JobListing, c Criteria) []*models.JobListing {
	out := make([]*models.JobListing, 0, len(listings))
	for _, l := range listings {
		if c.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

func (c Criteria) Match(l *models.JobListing) bool {
	return c.matchSkills(l) && c.matchLocation(l) && c.matchBudget(l)
}

func (c Criteria) matchSkills(l *models.JobListing) bool {
	if len(c.Skills) == 0 {
		return true
	}
	for _, s := range l.Skills {
		if _, ok := c.Skills[fold(s)]; ok {
			return true
		}
	}
	return false
}

func (c Criteria) matchLocation(l *models.JobListing) bool {
	if c.Location == "" {
		return true
	}
	if l.Location == "" {
		return false
	}
	return strings.Contains(fold(l.Location), fold(c.Location))
}

func (c Criteria) matchBudget(l *models.JobListing) bool {
	if c.MinBudget == nil && c.MaxBudget == nil {
		return true
	}
	amount, ok := BudgetAmount(l.Budget)
	if !ok {
		return false
	}
	if c.MinBudget != nil && amount < *c.MinBudget {
		return false
	}
	if c.MaxBudget != nil && amount > *c.MaxBudget {
		return false
	}
	return true
}

// BudgetAmount extracts the first "$<digits>" amount from a budget string.
// Amounts too large for an int saturate at math.MaxInt.
func BudgetAmount(budget string) (int, bool) {
	m := budgetAmount.FindStringSubmatch(budget)
	if m == nil {
		return 0, false
	}
	amount, err := strconv.Atoi(m[1])
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt, true
	}
	if err != nil {
		return 0, false
	}
	return amount, true
}

// fold returns the case-folded form of s. cases.Caser is stateful, so each
// call builds its own.
func fold(s string) string {
	return cases.Fold().String(s)
}
