package repository

import (
	"context"
	"strings"
	"time"
	"unicode"

	"aloka/internal/database"
	"aloka/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// studioTextVector must stay identical to the expression indexed in
// AutoMigrate, otherwise PostgreSQL will not use the GIN index.
const studioTextVector = "to_tsvector('simple', coalesce(studio_name, '') || ' ' || coalesce(description, '') || ' ' || coalesce(location_city, ''))"

// StudioFilter is a fully parsed list query. Nil bounds impose no constraint.
type StudioFilter struct {
	Search      string
	City        string
	MinPrice    *float64
	MaxPrice    *float64
	MinDistance *float64
	MaxDistance *float64
	MinRating   *float64
	Limit       int
	Offset      int
}

type StudioRepository struct {
	db *gorm.DB
}

func NewStudioRepository(db *gorm.DB) *StudioRepository {
	return &StudioRepository{db: db}
}

// List returns one page of active studios matching f, ordered by rating then
// recency, together with the number of matches across all pages.
func (r *StudioRepository) List(ctx context.Context, f StudioFilter) ([]domain.Studio, int64, error) {
	query := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&domain.Studio{}).
			Scopes(r.filterScopes(f)...)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	studios := []domain.Studio{}
	q := query().
		Order("rating DESC").
		Order("created_at DESC").
		Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if err := q.Find(&studios).Error; err != nil {
		return nil, 0, err
	}

	for i := range studios {
		studios[i].Normalize()
	}
	return studios, total, nil
}

func (r *StudioRepository) filterScopes(f StudioFilter) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{
		func(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", true) },
	}

	if tokens := searchTokens(f.Search); len(tokens) > 0 {
		scopes = append(scopes, r.textSearch(tokens))
	}

	if city := strings.TrimSpace(f.City); city != "" {
		pattern := "%" + escapeLike(strings.ToLower(city)) + "%"
		cond := r.lower("location_city") + " LIKE ? ESCAPE '\\'"
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where(cond, pattern)
		})
	}

	scopes = appendBound(scopes, "per_hour_charge >= ?", f.MinPrice)
	scopes = appendBound(scopes, "per_hour_charge <= ?", f.MaxPrice)
	scopes = appendBound(scopes, "max_distance >= ?", f.MinDistance)
	scopes = appendBound(scopes, "max_distance <= ?", f.MaxDistance)
	scopes = appendBound(scopes, "rating >= ?", f.MinRating)

	return scopes
}

// textSearch matches a studio when any token occurs in its name, description
// or city. PostgreSQL uses the full-text index; SQLite falls back to LIKE.
func (r *StudioRepository) textSearch(tokens []string) func(*gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		tsquery := strings.Join(tokens, " | ")
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(studioTextVector+" @@ to_tsquery('simple', ?)", tsquery)
		}
	}

	match := "(" + r.lower("studio_name") + " LIKE ? ESCAPE '\\' OR " +
		r.lower("description") + " LIKE ? ESCAPE '\\' OR " +
		r.lower("location_city") + " LIKE ? ESCAPE '\\')"
	return func(db *gorm.DB) *gorm.DB {
		clauses := make([]string, 0, len(tokens))
		args := make([]any, 0, len(tokens)*3)
		for _, tok := range tokens {
			p := "%" + escapeLike(tok) + "%"
			clauses = append(clauses, match)
			args = append(args, p, p, p)
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// lower folds column to lower case. PostgreSQL's LOWER follows the database
// locale; on SQLite the Unicode-aware function from the database package is used.
func (r *StudioRepository) lower(column string) string {
	if r.db.Dialector.Name() == "postgres" {
		return "LOWER(" + column + ")"
	}
	return database.FoldFunc + "(" + column + ")"
}

func appendBound(scopes []func(*gorm.DB) *gorm.DB, cond string, v *float64) []func(*gorm.DB) *gorm.DB {
	if v == nil {
		return scopes
	}
	val := *v
	return append(scopes, func(db *gorm.DB) *gorm.DB { return db.Where(cond, val) })
}

// searchTokens lower-cases s and splits it into letter/digit runs. Anything
// else is a separator, so the result is always safe inside a tsquery.
func searchTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetByID fetches a studio regardless of its active flag. Deleted studios
// are not found.
func (r *StudioRepository) GetByID(ctx context.Context, id string) (*domain.Studio, error) {
	var studio domain.Studio
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&studio).Error; err != nil {
		return nil, err
	}
	studio.Normalize()
	return &studio, nil
}

// Create a new studio; an ID is assigned when the caller left it empty.
func (r *StudioRepository) Create(ctx context.Context, studio *domain.Studio) error {
	if studio.ID == "" {
		studio.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(studio).Error
}

// Update writes every column of studio, zero values included. It reports
// gorm.ErrRecordNotFound when the row vanished since it was read.
func (r *StudioRepository) Update(ctx context.Context, studio *domain.Studio) error {
	res := r.db.WithContext(ctx).
		Model(studio).
		Select("*").
		Omit("ID", "CreatedAt", "DeletedAt").
		Updates(studio)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete tombstones a studio. Deleting a missing or already deleted studio
// reports gorm.ErrRecordNotFound.
func (r *StudioRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Studio{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeDeleted permanently removes studios tombstoned before cutoff.
func (r *StudioRepository) PurgeDeleted(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Delete(&domain.Studio{})
	return res.RowsAffected, res.Error
}
