package views

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/models"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestBestScore(t *testing.T) {
	a := models.Score{ID: uuid.New(), Score: 54}
	b := models.Score{ID: uuid.New(), Score: 49}
	c := models.Score{ID: uuid.New(), Score: 49}
	d := models.Score{ID: uuid.New(), Score: 60}

	best, err := BestScore([]models.Score{a, b, c, d})
	if err != nil {
		t.Fatal(err)
	}
	if best.ID != b.ID {
		t.Errorf("BestScore picked %v, want first minimum %v", best.ID, b.ID)
	}

	single, err := BestScore([]models.Score{d})
	if err != nil || single.ID != d.ID {
		t.Errorf("single element: got %v, %v", single.ID, err)
	}

	if _, err := BestScore(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty input: err = %v, want ErrEmpty", err)
	}
}

func TestBestScore_MatchesMinimum(t *testing.T) {
	inputs := [][]int{{3}, {5, 4, 3}, {1, 1, 1}, {70, 52, 61, 52, 80}}
	for _, in := range inputs {
		scores := make([]models.Score, len(in))
		lowest := in[0]
		for i, v := range in {
			scores[i] = models.Score{Score: v}
			if v < lowest {
				lowest = v
			}
		}
		best, err := BestScore(scores)
		if err != nil {
			t.Fatal(err)
		}
		if best.Score != lowest {
			t.Errorf("BestScore(%v) = %d, want %d", in, best.Score, lowest)
		}
	}
}

func TestGroupByCourse_PreservesEveryScore(t *testing.T) {
	courseA, courseB, courseC := uuid.New(), uuid.New(), uuid.New()
	scores := []models.Score{
		{ID: uuid.New(), CourseID: courseB, Score: 50},
		{ID: uuid.New(), CourseID: courseA, Score: 55},
		{ID: uuid.New(), CourseID: courseB, Score: 48},
		{ID: uuid.New(), CourseID: courseC, Score: 61},
		{ID: uuid.New(), CourseID: courseA, Score: 52},
	}

	groups := GroupByCourse(scores)

	wantOrder := []uuid.UUID{courseB, courseA, courseC}
	if len(groups) != len(wantOrder) {
		t.Fatalf("got %d groups, want %d", len(groups), len(wantOrder))
	}
	seen := make(map[uuid.UUID]int)
	for i, g := range groups {
		if g.Key != wantOrder[i] {
			t.Errorf("group %d key = %v, want %v (first-seen order)", i, g.Key, wantOrder[i])
		}
		for _, s := range g.Items {
			if s.CourseID != g.Key {
				t.Errorf("score %v in wrong group %v", s.ID, g.Key)
			}
			seen[s.ID]++
		}
	}
	if len(seen) != len(scores) {
		t.Errorf("union of groups has %d scores, want %d", len(seen), len(scores))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("score %v appears %d times", id, n)
		}
	}
}

func TestSortByScore_Stable(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	scores := []models.Score{
		{ID: uuid.New(), Score: 60},
		{ID: first, Score: 50},
		{ID: second, Score: 50},
	}
	SortByScore(scores)
	if scores[0].ID != first || scores[1].ID != second || scores[2].Score != 60 {
		t.Errorf("unexpected order: %+v", scores)
	}
}

func TestLatestPerGroup_Modes(t *testing.T) {
	course := uuid.New()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	old := models.Score{ID: uuid.New(), CourseID: course, DatePlayed: day("2024-04-01"), CreatedAt: t0.Add(3 * time.Hour)}
	recent := models.Score{ID: uuid.New(), CourseID: course, DatePlayed: day("2024-05-20"), CreatedAt: t0}
	undated := models.Score{ID: uuid.New(), CourseID: course, CreatedAt: t0.Add(5 * time.Hour)}
	scores := []models.Score{old, undated, recent}

	key := func(s models.Score) uuid.UUID { return s.CourseID }
	tests := []struct {
		mode LatestMode
		want uuid.UUID
	}{
		{ModePlayed, recent.ID},
		{ModeRecorded, undated.ID},
		{ModeEarliest, old.ID},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := LatestPerGroup(scores, key, tt.mode.Newer())
			if got[course].ID != tt.want {
				t.Errorf("mode %s picked %v, want %v", tt.mode, got[course].ID, tt.want)
			}
		})
	}
}

func TestLatestPerGroup_PlayedTieUsesRecordedTime(t *testing.T) {
	course := uuid.New()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a := models.Score{ID: uuid.New(), CourseID: course, DatePlayed: day("2024-05-01"), CreatedAt: t0}
	b := models.Score{ID: uuid.New(), CourseID: course, DatePlayed: day("2024-05-01"), CreatedAt: t0.Add(time.Minute)}

	got := LatestPerGroup([]models.Score{a, b}, func(s models.Score) uuid.UUID { return s.CourseID }, ModePlayed.Newer())
	if got[course].ID != b.ID {
		t.Errorf("tie on play date should prefer the later recording")
	}
}

func TestParseLatestMode(t *testing.T) {
	for _, s := range []string{"played", "recorded", "earliest"} {
		if _, err := ParseLatestMode(s); err != nil {
			t.Errorf("ParseLatestMode(%q): %v", s, err)
		}
	}
	if _, err := ParseLatestMode("newest"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestGallery(t *testing.T) {
	main := "main.jpg"
	empty := ""
	tests := []struct {
		name   string
		main   *string
		images []string
		want   []string
	}{
		{"main first", &main, []string{"a.jpg", "b.jpg"}, []string{"main.jpg", "a.jpg", "b.jpg"}},
		{"no dedupe", &main, []string{"main.jpg"}, []string{"main.jpg", "main.jpg"}},
		{"nil main", nil, []string{"a.jpg"}, []string{"a.jpg"}},
		{"empty main", &empty, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Gallery(tt.main, tt.images)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Gallery = %v, want %v", got, tt.want)
			}
		})
	}
}
