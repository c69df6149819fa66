package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/matjarhq/matjar/app/models"
	"github.com/matjarhq/matjar/app/repositories"
	"github.com/matjarhq/matjar/config"
	"github.com/matjarhq/matjar/pkg/cache"
	"github.com/matjarhq/matjar/pkg/logger"
	"github.com/matjarhq/matjar/pkg/orm"
)

// cacheTTL bounds how long a listing page may be served without hitting the
// database. Writes invalidate eagerly, so this only covers missed events.
const cacheTTL = 5 * time.Minute

// NewsCachePrefix is the Redis key prefix of cached listing pages. Event
// listeners call cache.ForgetPrefix on it after every write.
const NewsCachePrefix = "news:list:"

// QueryKey identifies one listing query. Two queries with equal keys return
// the same page; a fetch is issued only when the key changes, and a response
// is applied only while its key is still the current one.
type QueryKey struct {
	Page       int
	CategoryID string
	Status     string
	Search     string // effective (debounced) term
	DateBucket string
}

// CacheKey is the Redis key of this query's cached page. The HTTP listing
// handler and the query controller share entries through it.
func (k QueryKey) CacheKey() string {
	return fmt.Sprintf("%s%d:%s:%s:%s:%s",
		NewsCachePrefix, k.Page, k.CategoryID, k.Status, k.Search, k.DateBucket)
}

// listPage is the cached shape of one page.
type listPage struct {
	Items      []models.News  `json:"items"`
	Pagination orm.Pagination `json:"pagination"`
}

// FetchFunc loads one page of items. The production fetcher wraps
// NewsRepository.List; tests substitute slow or failing fakes.
type FetchFunc func(ctx context.Context, f repositories.NewsFilter) ([]models.News, orm.Pagination, error)

// ListQuery drives the item listing screen: it owns the current filter
// state, debounces free-text search, keys every fetch, and guarantees that
// only the response of the last issued key is ever applied.
type ListQuery struct {
	mu sync.Mutex

	page       int
	categoryID string
	status     string
	rawSearch  string // text as typed, updates immediately
	effSearch  string // term after the quiet period
	dateBucket string

	pageSize int
	debounce time.Duration
	timer    *time.Timer

	fetch    FetchFunc
	useCache bool

	current    QueryKey
	cancel     context.CancelFunc
	items      []models.News
	pagination orm.Pagination
	closed     bool

	// OnUpdate is called (outside the lock) whenever a fetch result is
	// applied. Optional.
	OnUpdate func(items []models.News, p orm.Pagination)
	// OnError is called when a fetch fails for the current key. Optional.
	OnError func(err error)
}

// NewListQuery builds a controller over the item repository with the
// configured page size and debounce interval.
func NewListQuery(repo *repositories.NewsRepository) *ListQuery {
	fetch := func(_ context.Context, f repositories.NewsFilter) ([]models.News, orm.Pagination, error) {
		return repo.List(f)
	}
	return NewListQueryWith(fetch, config.NewsPageSize(), config.SearchDebounce(), true)
}

// NewListQueryWith builds a controller with explicit wiring. Tests pass a
// fake fetcher, a short debounce, and useCache=false.
func NewListQueryWith(fetch FetchFunc, pageSize int, debounce time.Duration, useCache bool) *ListQuery {
	if pageSize <= 0 {
		pageSize = config.NewsPageSize()
	}
	return &ListQuery{
		page:       1,
		dateBucket: repositories.DateAny,
		pageSize:   pageSize,
		debounce:   debounce,
		fetch:      fetch,
		useCache:   useCache,
	}
}

// Start issues the initial fetch for the default state.
func (q *ListQuery) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.refetchLocked()
}

// SetPage moves to a different page without resetting any filter.
func (q *ListQuery) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.page == page {
		return
	}
	q.page = page
	q.refetchLocked()
}

// SetCategory changes the category filter and resets to the first page.
func (q *ListQuery) SetCategory(categoryID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.categoryID == categoryID {
		return
	}
	q.categoryID = categoryID
	q.page = 1
	q.refetchLocked()
}

// SetStatus changes the status filter and resets to the first page.
func (q *ListQuery) SetStatus(status string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status == status {
		return
	}
	q.status = status
	q.page = 1
	q.refetchLocked()
}

// SetDateBucket changes the date filter and resets to the first page.
func (q *ListQuery) SetDateBucket(bucket string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.dateBucket == bucket {
		return
	}
	q.dateBucket = bucket
	q.page = 1
	q.refetchLocked()
}

// SetSearchText records the raw text immediately and restarts the quiet
// timer. The text only becomes the effective term — and only then triggers
// a fetch — once no further input arrives for the debounce interval.
func (q *ListQuery) SetSearchText(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}

	q.rawSearch = text
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.debounce, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if q.closed || q.effSearch == q.rawSearch {
			return
		}
		q.effSearch = q.rawSearch
		q.page = 1
		q.refetchLocked()
	})
}

// Refresh re-issues the current query, bypassing the cache.
func (q *ListQuery) Refresh() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.issueLocked(q.keyLocked(), false)
}

// Delete removes an item through the repository, drops the row locally,
// invalidates every cached listing page, and clamps the page so the
// controller never points past the shrunken result set.
func (q *ListQuery) Delete(repo *repositories.NewsRepository, id string) error {
	if err := repo.Delete(id); err != nil {
		return err
	}

	if err := cache.ForgetPrefix(NewsCachePrefix); err != nil {
		logger.Warn("listquery: cache invalidation failed", "error", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0:0]
	for _, item := range q.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	q.items = kept

	newTotal := q.pagination.Total - 1
	if newTotal < 0 {
		newTotal = 0
	}
	q.pagination.Total = newTotal

	maxPage := int(math.Ceil(float64(newTotal) / float64(q.pageSize)))
	if maxPage < 1 {
		maxPage = 1
	}
	if q.page > maxPage {
		q.page = maxPage
	}
	q.refetchLocked()
	return nil
}

// Close cancels the debounce timer and any in-flight fetch. Nothing fires
// after Close returns.
func (q *ListQuery) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

// Items returns the currently applied page.
func (q *ListQuery) Items() []models.News {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.News, len(q.items))
	copy(out, q.items)
	return out
}

// Pagination returns the currently applied pagination metadata.
func (q *ListQuery) Pagination() orm.Pagination {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pagination
}

// Page returns the current page number.
func (q *ListQuery) Page() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.page
}

// EffectiveSearch returns the debounced search term.
func (q *ListQuery) EffectiveSearch() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.effSearch
}

// Key returns the key of the last issued query.
func (q *ListQuery) Key() QueryKey {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

func (q *ListQuery) keyLocked() QueryKey {
	return QueryKey{
		Page:       q.page,
		CategoryID: q.categoryID,
		Status:     q.status,
		Search:     q.effSearch,
		DateBucket: q.dateBucket,
	}
}

// refetchLocked issues a fetch when the key changed since the last issue.
func (q *ListQuery) refetchLocked() {
	key := q.keyLocked()
	if key == q.current && q.cancel != nil {
		return // identical key already in flight
	}
	q.issueLocked(key, q.useCache)
}

// issueLocked makes key the current one, cancels the previous in-flight
// fetch, and resolves the page — from cache when allowed, otherwise through
// the fetcher on a fresh goroutine. The response is applied only if key is
// still current when it arrives.
func (q *ListQuery) issueLocked(key QueryKey, tryCache bool) {
	if q.closed {
		return
	}

	if q.cancel != nil {
		q.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel
	q.current = key

	if tryCache {
		var page listPage
		if cache.Get(key.CacheKey(), &page) {
			q.items = page.Items
			q.pagination = page.Pagination
			cancel()
			q.cancel = nil
			if q.OnUpdate != nil {
				go q.OnUpdate(page.Items, page.Pagination)
			}
			return
		}
	}

	filter := repositories.NewsFilter{
		Page:       key.Page,
		PageSize:   q.pageSize,
		CategoryID: key.CategoryID,
		Status:     key.Status,
		Search:     key.Search,
		DateBucket: key.DateBucket,
	}

	go func() {
		items, pagination, err := q.fetch(ctx, filter)

		q.mu.Lock()
		if q.closed || key != q.current {
			q.mu.Unlock()
			return // stale response — a newer key was issued meanwhile
		}
		cancel()
		q.cancel = nil
		if err != nil {
			onErr := q.OnError
			q.mu.Unlock()
			if onErr != nil {
				onErr(err)
			}
			return
		}
		q.items = items
		q.pagination = pagination
		onUpdate := q.OnUpdate
		q.mu.Unlock()

		if q.useCache {
			cache.Set(key.CacheKey(), listPage{Items: items, Pagination: pagination}, cacheTTL)
		}
		if onUpdate != nil {
			onUpdate(items, pagination)
		}
	}()
}
