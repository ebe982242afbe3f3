// Package views holds the small pure functions that turn query results into what the
// pages show: best score, grouping by course, latest score per group, image galleries.
// Nothing here touches the database.
package views

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/models"
)

// ErrEmpty is returned by reductions that have no answer for an empty input.
var ErrEmpty = errors.New("views: empty score list")

// BestScore returns the score with the fewest throws.
// Ties go to the first one encountered. An empty list is an error, never a zero Score.
func BestScore(scores []models.Score) (models.Score, error) {
	if len(scores) == 0 {
		return models.Score{}, ErrEmpty
	}
	best := scores[0]
	for _, s := range scores[1:] {
		// Strictly less: an equal score later in the list does not take the lead.
		if s.Score < best.Score {
			best = s
		}
	}
	return best, nil
}

// SortByScore orders scores by throws ascending, keeping the original order for ties.
func SortByScore(scores []models.Score) {
	// SliceStable, not Slice: callers pass rows in recording order and rely on it for ties.
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score < scores[j].Score
	})
}

// Group is one bucket produced by GroupBy.
type Group[K comparable, T any] struct {
	Key   K
	Items []T
}

// GroupBy buckets items by key. Groups appear in the order their first item appears,
// and items keep their relative order inside a group.
func GroupBy[K comparable, T any](items []T, key func(T) K) []Group[K, T] {
	// index maps a key to its position in groups. The map gives constant-time lookup;
	// the slice keeps first-seen order, which a Go map does not.
	index := make(map[K]int)
	var groups []Group[K, T]
	for _, item := range items {
		k := key(item)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// GroupByCourse buckets competition scores by course id in first-seen order.
func GroupByCourse(scores []models.Score) []Group[uuid.UUID, models.Score] {
	return GroupBy(scores, func(s models.Score) uuid.UUID { return s.CourseID })
}

// LatestPerGroup keeps, for every key, the item that wins under newer.
// newer(a, b) reports whether a should replace b; on a tie the earlier item stays.
func LatestPerGroup[K comparable, T any](items []T, key func(T) K, newer func(a, b T) bool) map[K]T {
	out := make(map[K]T)
	for _, item := range items {
		k := key(item)
		cur, ok := out[k]
		if !ok || newer(item, cur) {
			out[k] = item
		}
	}
	return out
}

// LatestMode says what "latest" means in the per-course score feed.
type LatestMode string

const (
	// ModePlayed picks the most recently played round; undated rounds lose to dated ones
	// and ties fall back to the most recently recorded.
	ModePlayed LatestMode = "played"
	// ModeRecorded picks the most recently recorded round regardless of play date.
	ModeRecorded LatestMode = "recorded"
	// ModeEarliest picks the earliest played round (undated rounds last).
	ModeEarliest LatestMode = "earliest"
)

// ParseLatestMode validates a mode name. The empty string is not a mode.
func ParseLatestMode(s string) (LatestMode, error) {
	switch m := LatestMode(s); m {
	case ModePlayed, ModeRecorded, ModeEarliest:
		return m, nil
	}
	return "", fmt.Errorf("unknown latest mode %q (want played, recorded or earliest)", s)
}

// Newer returns the comparison LatestPerGroup uses for this mode.
func (m LatestMode) Newer() func(a, b models.Score) bool {
	switch m {
	case ModeRecorded:
		return func(a, b models.Score) bool { return a.CreatedAt.After(b.CreatedAt) }
	case ModeEarliest:
		return func(a, b models.Score) bool {
			return dateBefore(a.DatePlayed, b.DatePlayed)
		}
	default:
		return func(a, b models.Score) bool {
			switch {
			case a.DatePlayed == nil && b.DatePlayed == nil:
				return a.CreatedAt.After(b.CreatedAt)
			case a.DatePlayed == nil:
				return false
			case b.DatePlayed == nil:
				return true
			case a.DatePlayed.Equal(*b.DatePlayed):
				return a.CreatedAt.After(b.CreatedAt)
			default:
				return a.DatePlayed.After(*b.DatePlayed)
			}
		}
	}
}

// dateBefore orders play dates with missing dates after every real date.
func dateBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

// Gallery builds the image strip for a course: the main image (when set) followed by
// the supplementary list. Duplicates are kept.
func Gallery(mainImage *string, images []string) []string {
	out := make([]string, 0, len(images)+1)
	if mainImage != nil && *mainImage != "" {
		out = append(out, *mainImage)
	}
	return append(out, images...)
}
