package studio

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"aloka/internal/domain"
)

// Number accepts a JSON number or a numeric string such as "120.5"; HTML
// forms post prices as strings.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%q is not a number", s)
	}
	*n = Number(v)
	return nil
}

// LooseNumber is a Number that reads anything unparseable as 0, for fields
// where a non-positive value means "use the default".
type LooseNumber float64

func (n *LooseNumber) UnmarshalJSON(b []byte) error {
	var v Number
	if err := v.UnmarshalJSON(b); err != nil {
		*n = 0
		return nil
	}
	*n = LooseNumber(v)
	return nil
}

func (n *LooseNumber) Float() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

func (n *Number) Float() float64 {
	if n == nil {
		return 0
	}
	return float64(*n)
}

type LocationInput struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

func (l *LocationInput) trim() {
	l.City = strings.TrimSpace(l.City)
	l.State = strings.TrimSpace(l.State)
	l.ZipCode = strings.TrimSpace(l.ZipCode)
}

func (l LocationInput) toDomain() domain.Location {
	return domain.Location{City: l.City, State: l.State, ZipCode: l.ZipCode}
}

type EquipmentInput struct {
	Name  string `json:"name" validate:"required"`
	Brand string `json:"brand,omitempty"`
	Model string `json:"model,omitempty"`
}

func toEquipment(in []EquipmentInput) []domain.Equipment {
	out := make([]domain.Equipment, 0, len(in))
	for _, e := range in {
		out = append(out, domain.Equipment{
			Name:  strings.TrimSpace(e.Name),
			Brand: strings.TrimSpace(e.Brand),
			Model: strings.TrimSpace(e.Model),
		})
	}
	return out
}

// cleanServices trims labels and drops blank ones, keeping display order.
func cleanServices(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ---------- CREATE ----------

type CreateStudioRequest struct {
	StudioName    string           `json:"studioName" validate:"required"`
	Description   string           `json:"description" validate:"required"`
	Address       string           `json:"address" validate:"required"`
	Location      *LocationInput   `json:"location" validate:"required"`
	PerHourCharge *Number          `json:"perHourCharge" validate:"required,gte=0"`
	MaxDistance   *LooseNumber     `json:"maxDistance"`
	ImageURL      string           `json:"imageUrl"`
	Services      []string         `json:"services"`
	Equipment     []EquipmentInput `json:"equipment" validate:"dive"`
}

// CreateRequiredFields is reported back to callers on a rejected create.
var CreateRequiredFields = []string{
	"studioName", "description", "address", "perHourCharge",
	"location.city", "location.state", "location.zipCode",
}

// LocationRequiredFields must be sent together whenever a location is given.
var LocationRequiredFields = []string{"location.city", "location.state", "location.zipCode"}

// missingCreateFields reports the required create fields absent from a raw
// JSON object. It backs the error details when the body fails to decode.
func missingCreateFields(body map[string]json.RawMessage) []string {
	blank := func(raw json.RawMessage) bool {
		var str string
		if err := json.Unmarshal(raw, &str); err == nil {
			return strings.TrimSpace(str) == ""
		}
		return raw == nil || string(raw) == "null"
	}

	missing := []string{}
	for _, field := range []string{"studioName", "description", "address", "perHourCharge"} {
		if blank(body[field]) {
			missing = append(missing, field)
		}
	}

	var loc map[string]json.RawMessage
	_ = json.Unmarshal(body["location"], &loc)
	for _, field := range []string{"city", "state", "zipCode"} {
		if blank(loc[field]) {
			missing = append(missing, "location."+field)
		}
	}
	return missing
}

func (r *CreateStudioRequest) trim() {
	r.StudioName = strings.TrimSpace(r.StudioName)
	r.Description = strings.TrimSpace(r.Description)
	r.Address = strings.TrimSpace(r.Address)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	if r.Location != nil {
		r.Location.trim()
	}
	for i := range r.Equipment {
		r.Equipment[i].Name = strings.TrimSpace(r.Equipment[i].Name)
	}
}

func (r CreateStudioRequest) toStudio() *domain.Studio {
	maxDistance := r.MaxDistance.Float()
	if maxDistance <= 0 {
		maxDistance = domain.DefaultMaxDistance
	}

	images := []domain.Image{}
	if r.ImageURL != "" {
		images = append(images, domain.Image{URL: r.ImageURL})
	}

	return &domain.Studio{
		StudioName:    r.StudioName,
		Description:   r.Description,
		Address:       r.Address,
		Location:      r.Location.toDomain(),
		PerHourCharge: r.PerHourCharge.Float(),
		MaxDistance:   maxDistance,
		Rating:        0,
		Services:      cleanServices(r.Services),
		Equipment:     toEquipment(r.Equipment),
		Images:        images,
		IsActive:      true,
	}
}

// ---------- UPDATE ----------

// UpdateStudioRequest is a partial update: a field present in the body is
// applied even when it is 0 or false; an absent (or null) field is left alone.
type UpdateStudioRequest struct {
	StudioName    *string           `json:"studioName"`
	Description   *string           `json:"description"`
	Address       *string           `json:"address"`
	Location      *LocationInput    `json:"location"`
	PerHourCharge *Number           `json:"perHourCharge"`
	MaxDistance   *Number           `json:"maxDistance"`
	Rating        *Number           `json:"rating"`
	IsActive      *bool             `json:"isActive"`
	Services      *[]string         `json:"services"`
	Equipment     *[]EquipmentInput `json:"equipment"`
	ImageURL      *string           `json:"imageUrl"`
	Images        *[]domain.Image   `json:"images"`
}

func (r *UpdateStudioRequest) validate() *ValidationError {
	verr := newValidationError()

	requireText := func(field string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			verr.invalid(field, "must not be empty")
		}
	}
	requireText("studioName", r.StudioName)
	requireText("description", r.Description)
	requireText("address", r.Address)

	if r.Location != nil {
		r.Location.trim()
		if r.Location.City == "" {
			verr.missing("location.city")
		}
		if r.Location.State == "" {
			verr.missing("location.state")
		}
		if r.Location.ZipCode == "" {
			verr.missing("location.zipCode")
		}
	}

	if r.PerHourCharge != nil && r.PerHourCharge.Float() < 0 {
		verr.invalid("perHourCharge", "must be >= 0")
	}
	if r.MaxDistance != nil && r.MaxDistance.Float() < 0 {
		verr.invalid("maxDistance", "must be >= 0")
	}
	if r.Rating != nil {
		if v := r.Rating.Float(); v < domain.MinRating || v > domain.MaxRating {
			verr.invalid("rating", "must be between 0 and 5")
		}
	}
	if r.Equipment != nil {
		for i, e := range *r.Equipment {
			if strings.TrimSpace(e.Name) == "" {
				verr.missing(fmt.Sprintf("equipment[%d].name", i))
			}
		}
	}
	if r.Images != nil {
		for i, img := range *r.Images {
			if strings.TrimSpace(img.URL) == "" {
				verr.missing(fmt.Sprintf("images[%d].url", i))
			}
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

// apply merges the present fields into s and reports whether anything was set.
func (r UpdateStudioRequest) apply(s *domain.Studio) bool {
	changed := false
	set := func(f func()) {
		f()
		changed = true
	}

	if r.StudioName != nil {
		set(func() { s.StudioName = strings.TrimSpace(*r.StudioName) })
	}
	if r.Description != nil {
		set(func() { s.Description = strings.TrimSpace(*r.Description) })
	}
	if r.Address != nil {
		set(func() { s.Address = strings.TrimSpace(*r.Address) })
	}
	if r.Location != nil {
		set(func() { s.Location = r.Location.toDomain() })
	}
	if r.PerHourCharge != nil {
		set(func() { s.PerHourCharge = r.PerHourCharge.Float() })
	}
	if r.MaxDistance != nil {
		set(func() { s.MaxDistance = r.MaxDistance.Float() })
	}
	if r.Rating != nil {
		set(func() { s.Rating = r.Rating.Float() })
	}
	if r.IsActive != nil {
		set(func() { s.IsActive = *r.IsActive })
	}
	if r.Services != nil {
		set(func() { s.Services = cleanServices(*r.Services) })
	}
	if r.Equipment != nil {
		set(func() { s.Equipment = toEquipment(*r.Equipment) })
	}
	switch {
	case r.Images != nil:
		set(func() {
			images := make([]domain.Image, 0, len(*r.Images))
			for _, img := range *r.Images {
				images = append(images, domain.Image{URL: strings.TrimSpace(img.URL), Caption: img.Caption})
			}
			s.Images = images
		})
	case r.ImageURL != nil:
		set(func() {
			s.Images = []domain.Image{}
			if u := strings.TrimSpace(*r.ImageURL); u != "" {
				s.Images = append(s.Images, domain.Image{URL: u})
			}
		})
	}

	return changed
}

// ---------- LIST ----------

type ListResult struct {
	Studios    []domain.Studio `json:"studios"`
	Pagination Pagination      `json:"pagination"`
}
