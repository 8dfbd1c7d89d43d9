package studio

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"aloka/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// ListParams are the parsed query-string filters of GET /studios.
// A nil bound means the filter was absent or not a finite number.
type ListParams struct {
	Search      string
	City        string
	MinPrice    *float64
	MaxPrice    *float64
	MinDistance *float64
	MaxDistance *float64
	MinRating   *float64
	Page        int
	Limit       int
}

// ParseListParams never fails: unparseable numeric filters are treated as
// absent, and bad page/limit values fall back to their defaults. There is
// deliberately no upper bound on limit.
func ParseListParams(q url.Values) ListParams {
	return ListParams{
		Search:      strings.TrimSpace(q.Get("search")),
		City:        strings.TrimSpace(q.Get("city")),
		MinPrice:    parseBound(q.Get("minPrice")),
		MaxPrice:    parseBound(q.Get("maxPrice")),
		MinDistance: parseBound(q.Get("minDistance")),
		MaxDistance: parseBound(q.Get("maxDistance")),
		MinRating:   parseBound(q.Get("minRating")),
		Page:        parsePositiveInt(q.Get("page"), DefaultPage),
		Limit:       parsePositiveInt(q.Get("limit"), DefaultLimit),
	}
}

func parseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset is the number of sorted matches skipped before this page.
func (p ListParams) Offset() int {
	p = p.normalized()
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// Filter converts the params into the repository predicate.
func (p ListParams) Filter() repository.StudioFilter {
	p = p.normalized()
	return repository.StudioFilter{
		Search:      p.Search,
		City:        p.City,
		MinPrice:    p.MinPrice,
		MaxPrice:    p.MaxPrice,
		MinDistance: p.MinDistance,
		MaxDistance: p.MaxDistance,
		MinRating:   p.MinRating,
		Limit:       p.Limit,
		Offset:      p.Offset(),
	}
}

// CacheKey is a canonical encoding of the params: equal queries produce
// equal keys regardless of parameter order or number formatting.
func (p ListParams) CacheKey() string {
	p = p.normalized()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	if p.Search != "" {
		v.Set("search", strings.ToLower(p.Search))
	}
	if p.City != "" {
		v.Set("city", strings.ToLower(p.City))
	}
	setBound(v, "minPrice", p.MinPrice)
	setBound(v, "maxPrice", p.MaxPrice)
	setBound(v, "minDistance", p.MinDistance)
	setBound(v, "maxDistance", p.MaxDistance)
	setBound(v, "minRating", p.MinRating)
	return v.Encode()
}

func setBound(v url.Values, key string, b *float64) {
	if b != nil {
		v.Set(key, strconv.FormatFloat(*b, 'g', -1, 64))
	}
}

type Pagination struct {
	Current    int   `json:"current"`
	Total      int   `json:"total"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
	TotalCount int64 `json:"totalCount"`
}

// NewPagination derives page metadata. Total is never below 1, so an empty
// result still reports "page 1 of 1".
func NewPagination(page, limit int, totalCount int64) Pagination {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}

	total := int(totalCount / int64(limit))
	if totalCount%int64(limit) != 0 {
		total++
	}
	if total < 1 {
		total = 1
	}

	return Pagination{
		Current:    page,
		Total:      total,
		HasNext:    page < total,
		HasPrev:    page > 1,
		TotalCount: totalCount,
	}
}
