package studio

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"aloka/internal/domain"
	"aloka/internal/realtime"
	"aloka/internal/repository"
)

// Mock Studio Repository implementing the interface
type mockStudioRepo struct {
	mock.Mock
}

func (m *mockStudioRepo) List(ctx context.Context, f repository.StudioFilter) ([]domain.Studio, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.Studio), args.Get(1).(int64), args.Error(2)
}

func (m *mockStudioRepo) GetByID(ctx context.Context, id string) (*domain.Studio, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Studio), args.Error(1)
}

func (m *mockStudioRepo) Create(ctx context.Context, s *domain.Studio) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStudioRepo) Update(ctx context.Context, s *domain.Studio) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockStudioRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memoryCache is a generation cache kept in a map.
type memoryCache struct {
	gen   int64
	pages map[int64]map[string][]byte
	err   error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{pages: map[int64]map[string][]byte{}}
}

func (c *memoryCache) Generation(context.Context) (int64, error) { return c.gen, c.err }

func (c *memoryCache) Get(_ context.Context, gen int64, key string) ([]byte, bool) {
	p, ok := c.pages[gen][key]
	return p, ok
}

func (c *memoryCache) Set(_ context.Context, gen int64, key string, payload []byte) {
	if c.pages[gen] == nil {
		c.pages[gen] = map[string][]byte{}
	}
	c.pages[gen][key] = payload
}

func (c *memoryCache) Invalidate(context.Context) { c.gen++ }

type recordingPublisher struct {
	events []realtime.Event
}

func (p *recordingPublisher) Publish(ev realtime.Event) { p.events = append(p.events, ev) }

func looseNum(v float64) *LooseNumber {
	n := LooseNumber(v)
	return &n
}

func num(v float64) *Number {
	n := Number(v)
	return &n
}

func str(v string) *string { return &v }

func validCreateRequest() CreateStudioRequest {
	return CreateStudioRequest{
		StudioName:    "Studio A",
		Description:   "Green screen",
		Address:       "1 Main",
		Location:      &LocationInput{City: "Austin", State: "TX", ZipCode: "73301"},
		PerHourCharge: num(120),
	}
}

func TestService_Create_AppliesDefaults(t *testing.T) {
	repo := new(mockStudioRepo)
	pub := &recordingPublisher{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Studio")).
		Run(func(args mock.Arguments) { args.Get(1).(*domain.Studio).ID = "s1" }).
		Return(nil)

	svc := NewService(repo, nil, pub)
	studio, err := svc.Create(context.Background(), validCreateRequest())

	require.NoError(t, err)
	assert.Equal(t, "s1", studio.ID)
	assert.Equal(t, 120.0, studio.PerHourCharge)
	assert.Equal(t, domain.DefaultMaxDistance, studio.MaxDistance)
	assert.Equal(t, 0.0, studio.Rating)
	assert.True(t, studio.IsActive)
	assert.Equal(t, []domain.Image{}, studio.Images)
	assert.Equal(t, []string{}, studio.Services)
	assert.Equal(t, []domain.Equipment{}, studio.Equipment)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.StudioCreated, pub.events[0].Type)
	assert.Equal(t, "s1", pub.events[0].StudioID)
	repo.AssertExpectations(t)
}

func TestService_Create_ImageURLAndServices(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest()
	req.ImageURL = " https://cdn.example/a.jpg "
	req.MaxDistance = looseNum(25)
	req.Services = []string{"Lighting", " ", "Editing"}
	req.Equipment = []EquipmentInput{{Name: "Sony FX6", Brand: "Sony"}}

	studio, err := NewService(repo, nil, nil).Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []domain.Image{{URL: "https://cdn.example/a.jpg"}}, studio.Images)
	assert.Equal(t, 25.0, studio.MaxDistance)
	assert.Equal(t, []string{"Lighting", "Editing"}, studio.Services)
	assert.Equal(t, []domain.Equipment{{Name: "Sony FX6", Brand: "Sony"}}, studio.Equipment)
}

func TestService_Create_NonPositiveMaxDistanceDefaults(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest()
	req.MaxDistance = looseNum(0)

	studio, err := NewService(repo, nil, nil).Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxDistance, studio.MaxDistance)
}

func TestService_Create_ZeroPriceAllowed(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest()
	req.PerHourCharge = num(0)

	studio, err := NewService(repo, nil, nil).Create(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 0.0, studio.PerHourCharge)
}

func TestService_Create_ValidationNeverTouchesStore(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*CreateStudioRequest)
		wantMissing []string
		wantInvalid []string
	}{
		{
			name:        "missing city",
			mutate:      func(r *CreateStudioRequest) { r.Location.City = "" },
			wantMissing: []string{"location.city"},
		},
		{
			name:        "no location",
			mutate:      func(r *CreateStudioRequest) { r.Location = nil },
			wantMissing: []string{"location.city", "location.state", "location.zipCode"},
		},
		{
			name:        "blank name",
			mutate:      func(r *CreateStudioRequest) { r.StudioName = "   " },
			wantMissing: []string{"studioName"},
		},
		{
			name:        "no price",
			mutate:      func(r *CreateStudioRequest) { r.PerHourCharge = nil },
			wantMissing: []string{"perHourCharge"},
		},
		{
			name:        "negative price",
			mutate:      func(r *CreateStudioRequest) { r.PerHourCharge = num(-1) },
			wantInvalid: []string{"perHourCharge"},
		},
		{
			name:        "unnamed equipment",
			mutate:      func(r *CreateStudioRequest) { r.Equipment = []EquipmentInput{{Brand: "Sony"}} },
			wantMissing: []string{"equipment[0].name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockStudioRepo)
			req := validCreateRequest()
			tt.mutate(&req)

			_, err := NewService(repo, nil, nil).Create(context.Background(), req)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			for _, f := range tt.wantMissing {
				assert.Contains(t, verr.Missing, f)
			}
			for _, f := range tt.wantInvalid {
				assert.Contains(t, verr.Invalid, f)
			}
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Update_ZeroAndFalseAreApplied(t *testing.T) {
	repo := new(mockStudioRepo)
	stored := &domain.Studio{ID: "s1", StudioName: "A", Rating: 4.5, IsActive: true, PerHourCharge: 80}
	repo.On("GetByID", mock.Anything, "s1").Return(stored, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	inactive := false
	studio, err := NewService(repo, nil, nil).Update(context.Background(), "s1", UpdateStudioRequest{
		Rating:        num(0),
		IsActive:      &inactive,
		PerHourCharge: num(0),
	})

	require.NoError(t, err)
	assert.Equal(t, 0.0, studio.Rating)
	assert.False(t, studio.IsActive)
	assert.Equal(t, 0.0, studio.PerHourCharge)
	assert.Equal(t, "A", studio.StudioName)
	repo.AssertCalled(t, "Update", mock.Anything, stored)
}

func TestService_Update_EmptyPatchSkipsWrite(t *testing.T) {
	repo := new(mockStudioRepo)
	pub := &recordingPublisher{}
	repo.On("GetByID", mock.Anything, "s1").Return(&domain.Studio{ID: "s1", StudioName: "A"}, nil)

	studio, err := NewService(repo, nil, pub).Update(context.Background(), "s1", UpdateStudioRequest{})

	require.NoError(t, err)
	assert.Equal(t, "A", studio.StudioName)
	assert.Equal(t, []domain.Image{}, studio.Images)
	assert.Empty(t, pub.events)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Update_Images(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("GetByID", mock.Anything, "s1").Return(&domain.Studio{ID: "s1", Images: []domain.Image{{URL: "old"}}}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	studio, err := NewService(repo, nil, nil).Update(context.Background(), "s1", UpdateStudioRequest{ImageURL: str("")})

	require.NoError(t, err)
	assert.Equal(t, []domain.Image{}, studio.Images)
}

func TestService_Update_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  UpdateStudioRequest
	}{
		{"rating above range", UpdateStudioRequest{Rating: num(5.5)}},
		{"negative rating", UpdateStudioRequest{Rating: num(-0.1)}},
		{"negative distance", UpdateStudioRequest{MaxDistance: num(-1)}},
		{"empty name", UpdateStudioRequest{StudioName: str(" ")}},
		{"partial location", UpdateStudioRequest{Location: &LocationInput{City: "Austin"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockStudioRepo)

			_, err := NewService(repo, nil, nil).Update(context.Background(), "s1", tt.req)

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Update_NotFound(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("GetByID", mock.Anything, "nope").Return(nil, gorm.ErrRecordNotFound)

	_, err := NewService(repo, nil, nil).Update(context.Background(), "nope", UpdateStudioRequest{Rating: num(1)})

	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestService_MissingID(t *testing.T) {
	svc := NewService(new(mockStudioRepo), nil, nil)

	_, err := svc.Update(context.Background(), " ", UpdateStudioRequest{})
	assert.ErrorIs(t, err, ErrMissingID)
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), ErrMissingID)
	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestService_Delete(t *testing.T) {
	repo := new(mockStudioRepo)
	pub := &recordingPublisher{}
	repo.On("Delete", mock.Anything, "s1").Return(nil)
	repo.On("Delete", mock.Anything, "gone").Return(gorm.ErrRecordNotFound)

	svc := NewService(repo, nil, pub)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "gone"), ErrStudioNotFound)
	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.StudioDeleted, pub.events[0].Type)
}

func TestService_Get_HidesInactive(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("GetByID", mock.Anything, "off").Return(&domain.Studio{ID: "off", IsActive: false}, nil)

	_, err := NewService(repo, nil, nil).Get(context.Background(), "off")

	assert.ErrorIs(t, err, ErrStudioNotFound)
}

func TestService_List_UsesCacheUntilInvalidated(t *testing.T) {
	repo := new(mockStudioRepo)
	cache := newMemoryCache()
	repo.On("List", mock.Anything, mock.Anything).
		Return([]domain.Studio{{ID: "s1", StudioName: "A", IsActive: true}}, int64(1), nil)
	repo.On("Delete", mock.Anything, "s1").Return(nil)

	svc := NewService(repo, cache, nil)
	params := ListParams{Page: 1, Limit: 10}

	first, err := svc.List(context.Background(), params)
	require.NoError(t, err)
	second, err := svc.List(context.Background(), params)
	require.NoError(t, err)

	require.Len(t, second.Studios, 1)
	assert.Equal(t, first.Studios[0].ID, second.Studios[0].ID)
	assert.Equal(t, first.Pagination, second.Pagination)
	repo.AssertNumberOfCalls(t, "List", 1)

	require.NoError(t, svc.Delete(context.Background(), "s1"))
	_, err = svc.List(context.Background(), params)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestService_List_CacheErrorFallsBackToStore(t *testing.T) {
	repo := new(mockStudioRepo)
	cache := newMemoryCache()
	cache.err = errors.New("redis down")
	repo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), nil)

	svc := NewService(repo, cache, nil)
	res, err := svc.List(context.Background(), ListParams{})

	require.NoError(t, err)
	assert.Equal(t, []domain.Studio{}, res.Studios)
	assert.Equal(t, Pagination{Current: 1, Total: 1}, res.Pagination)
	assert.Empty(t, cache.pages)

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"studios":[]`)
}

func TestService_List_StoreError(t *testing.T) {
	repo := new(mockStudioRepo)
	repo.On("List", mock.Anything, mock.Anything).Return(nil, int64(0), errors.New("boom"))

	_, err := NewService(repo, nil, nil).List(context.Background(), ListParams{})

	assert.EqualError(t, err, "boom")
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{`120`, 120, false},
		{`"120.5"`, 120.5, false},
		{`" 7 "`, 7, false},
		{`""`, 0, true},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tt.raw), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, float64(n))
		})
	}
}
