package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"islamic-app-api/internal/cache"
	"islamic-app-api/internal/model"
	"islamic-app-api/internal/repository"
	"islamic-app-api/pkg/apierror"
)

const (
	// ListTTL bounds the staleness of list and detail entries.
	ListTTL = 1 * time.Hour

	// SearchTTL is deliberately short: search results are cheap to
	// recompute and are never invalidated on writes.
	SearchTTL = 60 * time.Second
)

// SurahService implements cache-aside reads and invalidate-on-write over
// the surah repository. The repository is the source of truth; the cache
// is a speed layer the service can live without. Every cache failure is
// logged and swallowed, so a broken or absent cache degrades the service
// to store-only operation instead of failing requests.
type SurahService struct {
	repo  repository.SurahRepository
	cache cache.Cache

	listTTL   time.Duration
	searchTTL time.Duration
}

// NewSurahService creates a new surah service. The cache may be nil, in
// which case every read goes straight to the repository.
// Returns nil if repo is nil (required dependency).
func NewSurahService(repo repository.SurahRepository, c cache.Cache) *SurahService {
	if repo == nil {
		return nil
	}
	return &SurahService{
		repo:      repo,
		cache:     c,
		listTTL:   ListTTL,
		searchTTL: SearchTTL,
	}
}

// cacheGet reads and unmarshals a cache entry into out. It reports a hit;
// misses, cache outages, and corrupt payloads all count as not-a-hit.
func (s *SurahService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			log.Printf("[SurahService] cache read failed for %q: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[SurahService] corrupt cache payload for %q: %v", key, err)
		return false
	}
	log.Printf("[SurahService] cache hit for %q", key)
	return true
}

// cacheSet marshals v and stores it under key. Failures are logged and
// swallowed; the caller already holds fresh repository data.
func (s *SurahService) cacheSet(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[SurahService] failed to marshal cache value for %q: %v", key, err)
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		log.Printf("[SurahService] cache write failed for %q: %v", key, err)
	}
}

// invalidate deletes the given keys. An invalidation failure never fails
// an otherwise-successful write; the entry self-heals at TTL expiry.
func (s *SurahService) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			log.Printf("[SurahService] cache invalidation failed for %q: %v", key, err)
		}
	}
}

// GetAll returns every surah, serving from cache when possible.
func (s *SurahService) GetAll(ctx context.Context) ([]model.Surah, error) {
	var cached []model.Surah
	if s.cacheGet(ctx, allSurahsKey, &cached) {
		return cached, nil
	}

	surahs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve surahs: %w", err)
	}

	s.cacheSet(ctx, allSurahsKey, surahs, s.listTTL)
	return surahs, nil
}

// GetByID returns a single surah by its internal ID. Negative results are
// never cached, so a later create for the same ID is immediately visible.
func (s *SurahService) GetByID(ctx context.Context, id string) (*model.Surah, error) {
	key := surahKey(id)

	var cached model.Surah
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	surah, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve surah: %w", err)
	}
	if surah == nil {
		return nil, apierror.NotFound("Surah not found")
	}

	s.cacheSet(ctx, key, surah, s.listTTL)
	return surah, nil
}

// GetByNumber returns a single surah by its chapter number.
func (s *SurahService) GetByNumber(ctx context.Context, number int) (*model.Surah, error) {
	key := surahNumberKey(number)

	var cached model.Surah
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	surah, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve surah: %w", err)
	}
	if surah == nil {
		return nil, apierror.NotFound("Surah not found")
	}

	s.cacheSet(ctx, key, surah, s.listTTL)
	return surah, nil
}

// Search returns surahs whose Arabic, Urdu, or English name contains the
// query, case-insensitively. Empty result lists are cached too; only an
// empty query is rejected, before any store or cache access.
func (s *SurahService) Search(ctx context.Context, query string) ([]model.Surah, error) {
	if query == "" {
		return nil, apierror.BadRequest("Search query is required")
	}

	key := searchKey(query)

	var cached []model.Surah
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	surahs, err := s.repo.SearchByName(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search surahs: %w", err)
	}

	s.cacheSet(ctx, key, surahs, s.searchTTL)
	return surahs, nil
}

// Create validates and persists a new surah, then invalidates the list
// snapshot. Search entries are left to expire on their own short TTL.
func (s *SurahService) Create(ctx context.Context, surah *model.Surah) (*model.Surah, error) {
	if err := surah.Validate(); err != nil {
		return nil, apierror.BadRequest(err.Error())
	}

	created, err := s.repo.Create(ctx, surah)
	if err != nil {
		if err == repository.ErrDuplicateNumber {
			return nil, apierror.BadRequest(fmt.Sprintf("surah number %d already exists", surah.Number))
		}
		return nil, fmt.Errorf("failed to create surah: %w", err)
	}

	s.invalidate(ctx, allSurahsKey)
	return created, nil
}

// Update applies a partial update, then invalidates the list snapshot and
// the ID entry. The number-keyed entry is deliberately not invalidated
// (see keys.go); it may serve the pre-update snapshot until its TTL lapses.
func (s *SurahService) Update(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error) {
	if update.IsEmpty() {
		return nil, apierror.BadRequest("no fields to update")
	}
	if err := update.Validate(); err != nil {
		return nil, apierror.BadRequest(err.Error())
	}

	updated, err := s.repo.UpdatePartial(ctx, id, update)
	if err != nil {
		if err == repository.ErrDuplicateNumber {
			return nil, apierror.BadRequest(fmt.Sprintf("surah number %d already exists", *update.Number))
		}
		return nil, fmt.Errorf("failed to update surah: %w", err)
	}
	if updated == nil {
		return nil, apierror.NotFound("Surah not found")
	}

	s.invalidate(ctx, allSurahsKey, surahKey(id))
	return updated, nil
}

// Delete removes a surah, then invalidates the list snapshot and the ID
// entry. Same number-key staleness window as Update.
func (s *SurahService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete surah: %w", err)
	}
	if !deleted {
		return apierror.NotFound("Surah not found")
	}

	s.invalidate(ctx, allSurahsKey, surahKey(id))
	return nil
}
