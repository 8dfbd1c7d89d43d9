package studio

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"aloka/internal/cache"
	"aloka/internal/domain"
	"aloka/internal/metrics"
	"aloka/internal/pkg/logger"
	"aloka/internal/pkg/validator"
	"aloka/internal/realtime"
)

type Service struct {
	studios StudioRepository
	cache   ListCache
	events  EventPublisher
	log     zerolog.Logger
}

// NewService wires the studio use cases. A nil cache or publisher disables
// that concern.
func NewService(studios StudioRepository, listCache ListCache, events EventPublisher) *Service {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	if events == nil {
		events = noopPublisher{}
	}
	return &Service{
		studios: studios,
		cache:   listCache,
		events:  events,
		log:     logger.WithComponent("studio"),
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(realtime.Event) {}

// List returns one page of active studios, serving from the list cache when
// the current generation has the page.
func (s *Service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	params = params.normalized()
	key := params.CacheKey()

	gen, cacheErr := s.cache.Generation(ctx)
	if cacheErr == nil {
		if payload, ok := s.cache.Get(ctx, gen, key); ok {
			var cached ListResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	studios, total, err := s.studios.List(ctx, params.Filter())
	if err != nil {
		return nil, err
	}
	if studios == nil {
		studios = []domain.Studio{}
	}
	for i := range studios {
		studios[i].Normalize()
	}

	result := &ListResult{
		Studios:    studios,
		Pagination: NewPagination(params.Page, params.Limit, total),
	}

	if cacheErr == nil {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, gen, key, payload)
		}
	}
	return result, nil
}

// Get returns a visible studio; inactive and deleted records read as not found.
func (s *Service) Get(ctx context.Context, id string) (*domain.Studio, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}
	studio, err := s.studios.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !studio.IsActive {
		return nil, ErrStudioNotFound
	}
	studio.Normalize()
	return studio, nil
}

func (s *Service) Create(ctx context.Context, req CreateStudioRequest) (*domain.Studio, error) {
	req.trim()
	if verr := validateCreate(req); verr != nil {
		return nil, verr
	}

	studio := req.toStudio()
	if err := s.studios.Create(ctx, studio); err != nil {
		return nil, err
	}
	studio.Normalize()

	s.changed(ctx, realtime.StudioCreated, studio.ID)
	s.log.Info().Str("studio_id", studio.ID).Str("city", studio.Location.City).Msg("studio created")
	return studio, nil
}

func validateCreate(req CreateStudioRequest) *ValidationError {
	errs := validator.Validate(req)
	if len(errs) == 0 {
		return nil
	}

	verr := newValidationError()
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		switch tag := errs[field]; {
		case field == "location" && tag == "required":
			verr.missing("location.city")
			verr.missing("location.state")
			verr.missing("location.zipCode")
		case tag == "required":
			verr.missing(field)
		case tag == "gte":
			verr.invalid(field, "must be >= 0")
		default:
			verr.invalid(field, "failed "+tag)
		}
	}
	return verr
}

// Update applies the present fields of req. An empty patch returns the stored
// record unchanged.
func (s *Service) Update(ctx context.Context, id string, req UpdateStudioRequest) (*domain.Studio, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingID
	}
	if verr := req.validate(); verr != nil {
		return nil, verr
	}

	studio, err := s.studios.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !req.apply(studio) {
		studio.Normalize()
		return studio, nil
	}

	if err := s.studios.Update(ctx, studio); err != nil {
		return nil, mapStoreError(err)
	}
	studio.Normalize()

	s.changed(ctx, realtime.StudioUpdated, studio.ID)
	return studio, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrMissingID
	}
	if err := s.studios.Delete(ctx, id); err != nil {
		return mapStoreError(err)
	}

	s.changed(ctx, realtime.StudioDeleted, id)
	s.log.Info().Str("studio_id", id).Msg("studio deleted")
	return nil
}

func (s *Service) changed(ctx context.Context, eventType, id string) {
	s.cache.Invalidate(ctx)
	s.events.Publish(realtime.Event{Type: eventType, StudioID: id, At: time.Now().UTC()})
	metrics.RecordStudioMutation(strings.TrimPrefix(eventType, "studio."))
}

func mapStoreError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrStudioNotFound
	}
	return err
}
