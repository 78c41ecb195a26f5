package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gdugdh24/profile-service/internal/domain"
	"github.com/gdugdh24/profile-service/internal/repository"
	"github.com/jmoiron/sqlx"
)

type overrideRepository struct {
	db *sqlx.DB
}

func NewOverrideRepository(db *sqlx.DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

func (r *overrideRepository) Get(ctx context.Context, userKey string) (*domain.ProfileOverride, error) {
	var override domain.ProfileOverride
	query := `
		SELECT user_key, gender, about, image_preview, updated_at
		FROM profile_overrides WHERE user_key = $1
	`
	err := r.db.GetContext(ctx, &override, query, userKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOverrideNotFound
		}
		return nil, err
	}
	return &override, nil
}

// Patch upserts only the columns present in patch.
func (r *overrideRepository) Patch(ctx context.Context, userKey string, patch domain.OverridePatch) (*domain.ProfileOverride, error) {
	columns := []string{"user_key"}
	args := []any{userKey}
	updates := []string{"updated_at = CURRENT_TIMESTAMP"}

	set := func(column string, value *string) {
		if value == nil {
			return
		}
		columns = append(columns, column)
		args = append(args, *value)
		updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", column, column))
	}
	set("gender", patch.Gender)
	set("about", patch.About)
	set("image_preview", patch.ImagePreview)

	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`
		INSERT INTO profile_overrides (%s)
		VALUES (%s)
		ON CONFLICT (user_key) DO UPDATE SET %s
		RETURNING user_key, gender, about, image_preview, updated_at
	`, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))

	var override domain.ProfileOverride
	if err := r.db.GetContext(ctx, &override, query, args...); err != nil {
		return nil, err
	}
	return &override, nil
}

func (r *overrideRepository) Delete(ctx context.Context, userKey string) error {
	query := `DELETE FROM profile_overrides WHERE user_key = $1`
	result, err := r.db.ExecContext(ctx, query, userKey)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrOverrideNotFound
	}
	return nil
}
