package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teleotp/teleotp/internal/models"
	"github.com/teleotp/teleotp/pkg/cache"
)

const listingsKey = "services:listings"

// ListingCache caches the buyer-facing catalog with per-service stock counts.
type ListingCache interface {
	GetListings(ctx context.Context) ([]models.ServiceListing, error)
	SetListings(ctx context.Context, listings []models.ServiceListing, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type CacheService struct {
	cache  *cache.RedisCache
	logger *logrus.Logger
}

func NewCacheService(cache *cache.RedisCache, logger *logrus.Logger) *CacheService {
	return &CacheService{
		cache:  cache,
		logger: logger,
	}
}

func (s *CacheService) GetListings(ctx context.Context) ([]models.ServiceListing, error) {
	var listings []models.ServiceListing
	err := s.cache.GetJSON(ctx, listingsKey, &listings)
	if err == cache.ErrCacheMiss {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (s *CacheService) SetListings(ctx context.Context, listings []models.ServiceListing, ttl time.Duration) error {
	return s.cache.Set(ctx, listingsKey, listings, ttl)
}

func (s *CacheService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, listingsKey)
}
