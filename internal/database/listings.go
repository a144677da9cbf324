package database

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"upwork-scraper/internal/errors"
	"upwork-scraper/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const listingKeyPrefix = "job:"

// ListingStore archives the last-seen version of every listing by id.
type ListingStore struct {
	db     *RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewListingStore(db *RedisClient, ttl time.Duration, logger *zap.Logger) *ListingStore {
	return &ListingStore{db: db, ttl: ttl, logger: logger}
}

func listingKey(id string) string {
	return listingKeyPrefix + id
}

func (s *ListingStore) Name() string { return "redis" }

// SaveListings overwrites each listing's archived record. Listings without
// an id cannot be looked up and are skipped.
func (s *ListingStore) SaveListings(ctx context.Context, listings []*models.JobListing) error {
	values := make(map[string]string, len(listings))
	skipped := 0
	for _, l := range listings {
		if l.ID == "" {
			skipped++
			continue
		}
		data, err := l.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to convert listing %s to JSON: %w", l.ID, err)
		}
		values[listingKey(l.ID)] = string(data)
	}

	if len(values) > 0 {
		if err := s.db.SetMany(ctx, values, s.ttl); err != nil {
			return fmt.Errorf("failed to save listings to Redis: %w", err)
		}
	}

	s.logger.Debug("archived listings",
		zap.Int("saved", len(values)),
		zap.Int("skipped", skipped))
	return nil
}

// GetListing returns the archived listing with the given id.
func (s *ListingStore) GetListing(ctx context.Context, id string) (*models.JobListing, error) {
	data, err := s.db.Get(ctx, listingKey(id))
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NotFound(fmt.Sprintf("listing %s not found", id), nil)
	}
	if err != nil {
		return nil, errors.Unavailable("failed to read listing from Redis", err)
	}

	listing, err := models.FromJSON([]byte(data))
	if err != nil {
		return nil, errors.Internal("failed to decode archived listing", err)
	}
	return listing, nil
}

func (s *ListingStore) Close() error {
	return s.db.Close()
}
