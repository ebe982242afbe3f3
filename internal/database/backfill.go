package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trentd187/discgolf/internal/models"
)

// rawImages is one course row read with image_urls as plain text, whatever the
// column's actual type is.
type rawImages struct {
	ID  uuid.UUID
	Raw *string
}

// BackfillImageURLs rewrites every courses.image_urls value to its canonical form:
// a JSON array of at most models.MaxImages strings. Older rows hold JSON text, NULL
// or garbage; all of them parse tolerantly (garbage becomes []).
//
// Rows already canonical are left alone. All rewrites happen in one transaction.
// It returns the number of rows changed.
func BackfillImageURLs(ctx context.Context, db *gorm.DB, log *zap.Logger) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var rows []rawImages
	err := db.WithContext(ctx).
		Table("courses").
		Select("id, CAST(image_urls AS TEXT) AS raw").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("read image_urls: %w", err)
	}

	changed := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			canonical, ok := canonicalImages(row.Raw)
			if ok {
				continue
			}
			err := tx.Table("courses").
				Where("id = ?", row.ID).
				Update("image_urls", canonical).Error
			if err != nil {
				return fmt.Errorf("rewrite course %s: %w", row.ID, err)
			}
			log.Debug("normalised image_urls", zap.Stringer("course_id", row.ID), zap.Int("images", len(canonical)))
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// canonicalImages returns the canonical list for raw and reports whether raw was
// already a clean JSON array of strings within the cap. The comparison is by value,
// not by text, because Postgres prints jsonb with its own spacing.
func canonicalImages(raw *string) (models.ImageList, bool) {
	if raw == nil {
		return models.ImageList{}, false
	}
	list := models.ParseImageList(*raw)
	var strict []string
	clean := json.Unmarshal([]byte(*raw), &strict) == nil && strict != nil && len(strict) <= models.MaxImages
	if len(list) > models.MaxImages {
		list = list[:models.MaxImages]
	}
	return models.ImageList(list), clean
}

// AlterImageColumnToJSONB converts courses.image_urls to jsonb. Run it only after
// BackfillImageURLs, otherwise the cast fails on the first non-JSON row.
func AlterImageColumnToJSONB(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).
		Exec("ALTER TABLE courses ALTER COLUMN image_urls TYPE jsonb USING image_urls::jsonb").Error
	if err != nil {
		return fmt.Errorf("convert image_urls to jsonb: %w", err)
	}
	return nil
}
