package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"islamic-app-api/internal/cache"
	"islamic-app-api/internal/model"
	"islamic-app-api/internal/repository"
	"islamic-app-api/pkg/apierror"
)

// fakeSurahRepo is an in-memory SurahRepository with call counters, so
// tests can verify which reads were served from cache.
type fakeSurahRepo struct {
	mu     sync.Mutex
	surahs []model.Surah
	nextID int

	findAllCalls      int
	findByIDCalls     int
	findByNumberCalls int
	searchCalls       int
}

func newFakeSurahRepo() *fakeSurahRepo {
	return &fakeSurahRepo{nextID: 1}
}

func (f *fakeSurahRepo) Create(ctx context.Context, surah *model.Surah) (*model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.surahs {
		if s.Number == surah.Number {
			return nil, repository.ErrDuplicateNumber
		}
	}
	surah.ID = fmt.Sprintf("id-%d", f.nextID)
	f.nextID++
	now := time.Now().UTC()
	surah.CreatedAt = now
	surah.UpdatedAt = now
	f.surahs = append(f.surahs, *surah)
	return surah, nil
}

func (f *fakeSurahRepo) FindAll(ctx context.Context) ([]model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findAllCalls++
	out := make([]model.Surah, len(f.surahs))
	copy(out, f.surahs)
	return out, nil
}

func (f *fakeSurahRepo) FindByID(ctx context.Context, id string) (*model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByIDCalls++
	for i := range f.surahs {
		if f.surahs[i].ID == id {
			s := f.surahs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSurahRepo) FindByNumber(ctx context.Context, number int) (*model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findByNumberCalls++
	for i := range f.surahs {
		if f.surahs[i].Number == number {
			s := f.surahs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSurahRepo) UpdatePartial(ctx context.Context, id string, update *model.SurahUpdate) (*model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.surahs {
		if f.surahs[i].ID == id {
			if update.Number != nil {
				for j := range f.surahs {
					if j != i && f.surahs[j].Number == *update.Number {
						return nil, repository.ErrDuplicateNumber
					}
				}
			}
			update.Apply(&f.surahs[i])
			s := f.surahs[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeSurahRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.surahs {
		if f.surahs[i].ID == id {
			f.surahs = append(f.surahs[:i], f.surahs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSurahRepo) SearchByName(ctx context.Context, query string) ([]model.Surah, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	q := strings.ToLower(query)
	out := make([]model.Surah, 0)
	for _, s := range f.surahs {
		if strings.Contains(strings.ToLower(s.NameArabic), q) ||
			strings.Contains(strings.ToLower(s.NameUrdu), q) ||
			strings.Contains(strings.ToLower(s.NameEnglish), q) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSurahRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeSurahRepo) Close() error                   { return nil }

// brokenCache fails every operation, simulating a cache outage.
type brokenCache struct{}

var errCacheDown = errors.New("connection refused")

func (brokenCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, errCacheDown }
func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errCacheDown
}
func (brokenCache) Delete(ctx context.Context, key string) error { return errCacheDown }
func (brokenCache) Exists(ctx context.Context, key string) (bool, error) {
	return false, errCacheDown
}
func (brokenCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	return nil, errCacheDown
}
func (brokenCache) Clear(ctx context.Context) error { return errCacheDown }

func validSurah(number int, nameEnglish string) *model.Surah {
	return &model.Surah{
		Number:             number,
		NameArabic:         "الفاتحة",
		NameUrdu:           "فاتحہ",
		NameEnglish:        nameEnglish,
		EnglishMeaning:     "The Opening",
		TotalVerses:        7,
		RevelationType:     model.RevelationMeccan,
		ChapterNumber:      number,
		JuzNumbers:         []int{1},
		BismillahPre:       true,
		Place:              "Mecca",
		ChronologicalOrder: 5,
		RukuCount:          1,
	}
}

// fakeClock drives the memory cache's TTL handling without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*SurahService, *fakeSurahRepo, *cache.MemoryCache, *fakeClock) {
	t.Helper()
	repo := newFakeSurahRepo()
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { mem.Close() })
	clock := newFakeClock()
	mem.SetClock(clock.Now)
	svc := NewSurahService(repo, mem)
	return svc, repo, mem, clock
}

func TestGetAllServesSecondReadFromCache(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll (miss): %v", err)
	}
	second, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll (hit): %v", err)
	}

	if repo.findAllCalls != 1 {
		t.Errorf("expected 1 store query, got %d", repo.findAllCalls)
	}
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached read differs from fresh read: %v vs %v", first, second)
	}
}

func TestSearchEntryExpiresAfterTTL(t *testing.T) {
	svc, repo, _, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(24, "The Light")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Search(ctx, "Light"); err != nil {
		t.Fatalf("Search (miss): %v", err)
	}
	if _, err := svc.Search(ctx, "Light"); err != nil {
		t.Fatalf("Search (hit): %v", err)
	}
	if repo.searchCalls != 1 {
		t.Fatalf("expected 1 store query before expiry, got %d", repo.searchCalls)
	}

	clock.Advance(61 * time.Second)

	if _, err := svc.Search(ctx, "Light"); err != nil {
		t.Fatalf("Search (after expiry): %v", err)
	}
	if repo.searchCalls != 2 {
		t.Errorf("expected a fresh store query after 60s, got %d total", repo.searchCalls)
	}
}

func TestListEntrySurvivesSearchTTL(t *testing.T) {
	svc, repo, _, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	clock.Advance(10 * time.Minute)

	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if repo.findAllCalls != 1 {
		t.Errorf("list entry expired before 1h: %d store queries", repo.findAllCalls)
	}

	clock.Advance(51 * time.Minute)

	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if repo.findAllCalls != 2 {
		t.Errorf("expected a fresh store query after 1h, got %d total", repo.findAllCalls)
	}
}

func TestCreateInvalidatesListCache(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	if _, err := svc.Create(ctx, validSurah(2, "The Cow")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	surahs, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(surahs) != 2 {
		t.Errorf("list is stale after create: got %d surahs, want 2", len(surahs))
	}
}

func TestCreateLeavesSearchEntriesStale(t *testing.T) {
	svc, repo, _, clock := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(24, "The Light")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	matches, err := svc.Search(ctx, "The")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}

	// A create does not touch search entries; the stale list persists
	// until the 60s TTL lapses.
	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	matches, err = svc.Search(ctx, "The")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("search entry was invalidated on create: got %d matches", len(matches))
	}
	if repo.searchCalls != 1 {
		t.Errorf("expected stale cached result, got %d store queries", repo.searchCalls)
	}

	clock.Advance(61 * time.Second)

	matches, err = svc.Search(ctx, "The")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("expected fresh result after TTL, got %d matches", len(matches))
	}
}

func TestSearchKeysAreCaseSensitive(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(24, "An-Noor")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	upper, err := svc.Search(ctx, "Noor")
	if err != nil {
		t.Fatalf("Search(Noor): %v", err)
	}
	lower, err := svc.Search(ctx, "noor")
	if err != nil {
		t.Fatalf("Search(noor): %v", err)
	}

	// Matching is case-insensitive, so both queries return the same set,
	// but the raw-query keys fragment the cache: two store queries.
	if len(upper) != 1 || len(lower) != 1 {
		t.Errorf("expected both casings to match: %d vs %d", len(upper), len(lower))
	}
	if repo.searchCalls != 2 {
		t.Errorf("expected 2 independent store queries, got %d", repo.searchCalls)
	}
}

func TestSearchCachesEmptyResults(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		matches, err := svc.Search(ctx, "nomatch")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(matches) != 0 {
			t.Fatalf("expected no matches, got %d", len(matches))
		}
	}
	if repo.searchCalls != 1 {
		t.Errorf("empty result was not cached: %d store queries", repo.searchCalls)
	}
}

func TestEmptySearchQueryRejectedBeforeAnyIO(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, err := svc.Search(context.Background(), "")
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400 error, got %v", err)
	}
	if apiErr.Message != "Search query is required" {
		t.Errorf("unexpected message: %q", apiErr.Message)
	}
	if repo.searchCalls != 0 {
		t.Errorf("store was queried for an empty search")
	}
}

func TestAllOperationsSucceedWithCacheDown(t *testing.T) {
	repo := newFakeSurahRepo()
	svc := NewSurahService(repo, brokenCache{})
	ctx := context.Background()

	created, err := svc.Create(ctx, validSurah(1, "The Opening"))
	if err != nil {
		t.Fatalf("Create with cache down: %v", err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll with cache down: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("GetByID with cache down: %v", err)
	}
	if _, err := svc.GetByNumber(ctx, 1); err != nil {
		t.Fatalf("GetByNumber with cache down: %v", err)
	}
	if _, err := svc.Search(ctx, "Opening"); err != nil {
		t.Fatalf("Search with cache down: %v", err)
	}
	name := "Al-Fatihah"
	if _, err := svc.Update(ctx, created.ID, &model.SurahUpdate{NameEnglish: &name}); err != nil {
		t.Fatalf("Update with cache down: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete with cache down: %v", err)
	}
}

func TestNilCacheDisablesCaching(t *testing.T) {
	repo := newFakeSurahRepo()
	svc := NewSurahService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.GetAll(ctx); err != nil {
			t.Fatalf("GetAll: %v", err)
		}
	}
	if repo.findAllCalls != 2 {
		t.Errorf("expected every read to hit the store, got %d queries", repo.findAllCalls)
	}
}

func TestNotFoundIsNotCached(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.GetByID(ctx, "id-1")
		apiErr, ok := err.(*apierror.Error)
		if !ok || apiErr.StatusCode != 404 {
			t.Fatalf("expected 404, got %v", err)
		}
	}
	if repo.findByIDCalls != 2 {
		t.Fatalf("negative result was cached: %d store queries", repo.findByIDCalls)
	}

	// The fake assigns id-1 to the first created record, so the earlier
	// misses must not mask it.
	created, err := svc.Create(ctx, validSurah(1, "The Opening"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "id-1" {
		t.Fatalf("fake repo assigned unexpected id %q", created.ID)
	}
	got, err := svc.GetByID(ctx, "id-1")
	if err != nil {
		t.Fatalf("GetByID after create: %v", err)
	}
	if got.NameEnglish != "The Opening" {
		t.Errorf("unexpected surah: %+v", got)
	}
}

func TestUpdateInvalidatesIDAndListButNotNumberKey(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSurah(1, "The Opening"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Populate all three read paths.
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if _, err := svc.GetByNumber(ctx, 1); err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}

	name := "Al-Fatihah"
	if _, err := svc.Update(ctx, created.ID, &model.SurahUpdate{NameEnglish: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	byID, err := svc.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.NameEnglish != "Al-Fatihah" {
		t.Errorf("ID entry was not invalidated: got %q", byID.NameEnglish)
	}

	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if all[0].NameEnglish != "Al-Fatihah" {
		t.Errorf("list entry was not invalidated: got %q", all[0].NameEnglish)
	}

	// The number-keyed entry is deliberately left alone: it still serves
	// the pre-update snapshot, without a store query.
	numberQueries := repo.findByNumberCalls
	byNumber, err := svc.GetByNumber(ctx, 1)
	if err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}
	if byNumber.NameEnglish != "The Opening" {
		t.Errorf("number entry unexpectedly invalidated: got %q", byNumber.NameEnglish)
	}
	if repo.findByNumberCalls != numberQueries {
		t.Errorf("expected the stale cached snapshot, store was queried")
	}
}

func TestDeleteInvalidatesIDAndList(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, validSurah(1, "The Opening"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if _, err := svc.GetByID(ctx, created.ID); err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.GetByID(ctx, created.ID); err == nil {
		t.Errorf("expected not-found after delete, got cached record")
	}
	all, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("list is stale after delete: %d surahs", len(all))
	}
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, validSurah(1, "Duplicate"))
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400 for duplicate number, got %v", err)
	}
}

func TestCreateRejectsInvalidSurahWithoutCacheInteraction(t *testing.T) {
	svc, _, mem, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.GetAll(ctx); err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	bad := validSurah(2, "The Cow")
	bad.RevelationType = "Martian"
	if _, err := svc.Create(ctx, bad); err == nil {
		t.Fatal("expected validation error")
	}

	// The failed create must not have invalidated the list snapshot.
	exists, err := mem.Exists(ctx, allSurahsKey)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Errorf("list entry was invalidated by a failed create")
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	name := "Whatever"
	_, err := svc.Update(context.Background(), "missing", &model.SurahUpdate{NameEnglish: &name})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestUpdateRejectsEmptyUpdate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "id-1", &model.SurahUpdate{})
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestDeleteNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.Delete(context.Background(), "missing")
	apiErr, ok := err.(*apierror.Error)
	if !ok || apiErr.StatusCode != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestCorruptCachePayloadFallsBackToStore(t *testing.T) {
	svc, repo, mem, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, validSurah(1, "The Opening")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mem.Set(ctx, allSurahsKey, []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	surahs, err := svc.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll with corrupt payload: %v", err)
	}
	if len(surahs) != 1 {
		t.Errorf("expected store fallback, got %d surahs", len(surahs))
	}
	if repo.findAllCalls != 1 {
		t.Errorf("expected 1 store query, got %d", repo.findAllCalls)
	}
}
