package api

import (
	"fmt"
	"net/http"
	"strconv"

	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/filter"
	"upwork-scraper/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultPage = 1

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Jobs handles GET /api/jobs?query=&page=.
func (h *Handler) Jobs(c *gin.Context) {
	page, err := parsePage(c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}

	listings, err := h.scraper.ParseListings(c.Request.Context(), c.Query("query"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	if listings == nil {
		listings = []*models.JobListing{}
	}

	c.JSON(http.StatusOK, listings)
}

// Search handles GET /api/jobs/search: a scrape followed by the filters.
func (h *Handler) Search(c *gin.Context) {
	page, err := parsePage(c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}

	criteria, err := parseCriteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	listings, err := h.scraper.ParseListings(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		h.fail(c, err)
		return
	}

	if criteria.Active() {
		listings = filter.Apply(listings, criteria)
	}
	if listings == nil {
		listings = []*models.JobListing{}
	}

	c.JSON(http.StatusOK, listings)
}

// ArchivedJob handles GET /api/archive/jobs/:id.
func (h *Handler) ArchivedJob(c *gin.Context) {
	if h.archive == nil {
		h.fail(c, errors.Unavailable("listing archive is not configured", nil))
		return
	}

	listing, err := h.archive.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrTypeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parsePage(raw string) (int, error) {
	if raw == "" {
		return defaultPage, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, errors.InvalidInput(fmt.Sprintf("page must be a positive integer, got %q", raw), nil)
	}
	return page, nil
}

func parseCriteria(c *gin.Context) (filter.Criteria, error) {
	criteria := filter.Criteria{
		Skills:   filter.ParseSkills(c.Query("skills")),
		Location: c.Query("location"),
	}

	var err error
	if criteria.MinBudget, err = parseBound("minBudget", c.Query("minBudget")); err != nil {
		return criteria, err
	}
	if criteria.MaxBudget, err = parseBound("maxBudget", c.Query("maxBudget")); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func parseBound(name, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must be an integer, got %q", name, raw), nil)
	}
	return &v, nil
}

