package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// MaxImages is the most supplementary images a course may carry.
const MaxImages = 5

// ImageList is the course image_urls column: a JSON array of URL strings.
//
// Writes always produce a canonical JSON array. Reads go through ParseImageList so
// rows written by older clients (double-encoded strings, junk text) load as an empty
// list instead of failing the whole query.
type ImageList []string

// ParseImageList turns whatever an image field holds into a list of URLs.
//   - a []string is returned unchanged
//   - a []any is kept only if every element is a string
//   - a string or []byte is decoded as JSON and kept only if it is an array of strings
//   - anything else yields an empty list
//
// It never fails and never returns nil.
func ParseImageList(raw any) []string {
	switch v := raw.(type) {
	case []string:
		if v == nil {
			return []string{}
		}
		return v
	case ImageList:
		return ParseImageList([]string(v))
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return []string{}
			}
			out = append(out, s)
		}
		return out
	case string:
		return decodeImageJSON([]byte(v))
	case []byte:
		return decodeImageJSON(v)
	default:
		return []string{}
	}
}

func decodeImageJSON(b []byte) []string {
	var list []string
	if err := json.Unmarshal(b, &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// Value implements driver.Valuer. Lists longer than MaxImages are rejected.
func (l ImageList) Value() (driver.Value, error) {
	if len(l) > MaxImages {
		return nil, fmt.Errorf("image list has %d entries, at most %d allowed", len(l), MaxImages)
	}
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *ImageList) Scan(src any) error {
	if src == nil {
		*l = ImageList{}
		return nil
	}
	*l = ParseImageList(src)
	return nil
}

// GormDataType reports the generic data type used by gorm's migrator.
func (ImageList) GormDataType() string {
	return "json"
}

// GormDBDataType picks the concrete column type per dialect.
func (ImageList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
