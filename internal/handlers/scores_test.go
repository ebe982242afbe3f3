package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/websocket"
)

func TestAddScore_ListedWithAlias(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	e.saveProfile(t, player, "Eagle Eye")
	course := e.createCourse(t, player, "Alby")

	e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 54, "date_played": "2024-05-01"})

	// The body is a bare array of rows.
	var got []ScoreResponse
	e.doJSON(t, http.MethodGet, "/api/v1/scores?courseId="+course.ID, nil, uuid.Nil, fiber.StatusOK, &got)
	if len(got) != 1 {
		t.Fatalf("got %d scores, want 1", len(got))
	}
	row := got[0]
	if row.Score != 54 {
		t.Errorf("score = %d, want 54", row.Score)
	}
	if row.Profiles == nil || row.Profiles.Alias != "Eagle Eye" {
		t.Errorf("profiles = %+v, want alias Eagle Eye", row.Profiles)
	}
	if row.DatePlayed == nil || *row.DatePlayed != "2024-05-01" {
		t.Errorf("date_played = %v", row.DatePlayed)
	}
	if row.UserID != player.String() {
		t.Errorf("user_id = %s, want caller %s", row.UserID, player)
	}

	var best *ScoreResponse
	e.doJSON(t, http.MethodGet, "/api/v1/scores/best?courseId="+course.ID, nil, uuid.Nil, fiber.StatusOK, &best)
	if best == nil || best.ID != row.ID {
		t.Errorf("best = %+v", best)
	}
}

func TestAddScore_Validation(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	course := e.createCourse(t, player, "Alby")
	comp := uuid.NewString()

	tests := []struct {
		name      string
		body      map[string]any
		wantField string
	}{
		{"missing course", map[string]any{"score": 54}, "course_id"},
		{"missing score", map[string]any{"course_id": course.ID}, "score"},
		{"text score", map[string]any{"course_id": course.ID, "score": "many"}, "score"},
		{"score beyond integer", map[string]any{"course_id": course.ID, "score": 3000000000}, "score"},
		{"score string beyond integer", map[string]any{"course_id": course.ID, "score": "3000000000"}, "score"},
		{"huge float score", map[string]any{"course_id": course.ID, "score": 1e300}, "score"},
		{"bad date", map[string]any{"course_id": course.ID, "score": 54, "date_played": "01/05/2024"}, "date_played"},
		{"unknown course", map[string]any{"course_id": uuid.NewString(), "score": 54}, "course_id"},
		{"competition without course", map[string]any{"course_id": course.ID, "score": 54, "competition_id": comp}, "competition_id"},
		{"friends not names", map[string]any{"course_id": course.ID, "score": 54, "with_friends": []any{1, 2}}, "with_friends"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := e.do(t, http.MethodPost, "/api/v1/scores", tt.body, player)
			if status != fiber.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", status, data)
			}
			if msg := errorOf(t, data); !strings.Contains(msg, tt.wantField) {
				t.Errorf("error %q does not name %s", msg, tt.wantField)
			}
		})
	}
}

func TestAddScore_Companions(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	course := e.createCourse(t, player, "Alby")

	fromText := e.addScore(t, player, map[string]any{"course_id": course.ID, "score": "58", "with_friends": "Anna, Per ,"})
	if want := []string{"Anna", "Per"}; !slices.Equal(fromText.WithFriends, want) {
		t.Errorf("with_friends from text = %v, want %v", fromText.WithFriends, want)
	}
	if fromText.Score != 58 {
		t.Errorf("numeric string score = %d, want 58", fromText.Score)
	}

	fromList := e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 60, "with_friends": []string{"Lina"}})
	if want := []string{"Lina"}; !slices.Equal(fromList.WithFriends, want) {
		t.Errorf("with_friends from list = %v, want %v", fromList.WithFriends, want)
	}
}

func TestAddScore_InsideCompetition(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	course := e.createCourse(t, player, "Alby")
	var comp CompetitionDetailResponse
	e.doJSON(t, http.MethodPost, "/api/v1/competitions",
		map[string]any{"title": "Cup", "course_ids": []string{course.ID}}, player, fiber.StatusCreated, &comp)

	s := e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 50, "competition_id": comp.ID})
	if s.CompetitionID == nil || s.CompetitionID.String() != comp.ID {
		t.Errorf("competition_id = %v, want %s", s.CompetitionID, comp.ID)
	}
}

func TestAddScore_PublishesToLiveTopics(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	course := e.createCourse(t, player, "Alby")
	courseID := uuid.MustParse(course.ID)

	watcher := websocket.NewClient(websocket.CourseTopic(courseID))
	e.hub.Register(watcher)

	added := e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 49})

	select {
	case msg := <-watcher.Send:
		var pushed ScoreResponse
		if err := json.Unmarshal(msg, &pushed); err != nil {
			t.Fatal(err)
		}
		if pushed.ID != added.ID || pushed.Courses == nil || pushed.Courses.Name != "Alby" {
			t.Errorf("pushed %+v, want score %s on Alby", pushed, added.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("no live update received")
	}
}

// Regression: a player must never be able to change someone else's round.
func TestUpdateScore_RejectsNonOwner(t *testing.T) {
	e := newEnv(t)
	owner, intruder := uuid.New(), uuid.New()
	course := e.createCourse(t, owner, "Alby")
	s := e.addScore(t, owner, map[string]any{"course_id": course.ID, "score": 54})

	patch := map[string]any{"course_id": course.ID, "score": 30}
	for _, path := range []string{"/api/v1/scores/" + s.ID, "/api/v1/scores"} {
		body := patch
		if path == "/api/v1/scores" {
			body = map[string]any{"id": s.ID, "course_id": course.ID, "score": 30}
		}
		status, data := e.do(t, http.MethodPut, path, body, intruder)
		if status != fiber.StatusForbidden {
			t.Errorf("PUT %s by non-owner: status = %d, want 403 (%s)", path, status, data)
		}
	}
	status, _ := e.do(t, http.MethodDelete, "/api/v1/scores/"+s.ID, nil, intruder)
	if status != fiber.StatusForbidden {
		t.Errorf("DELETE by non-owner: status = %d, want 403", status)
	}

	stored, err := e.st.GetScore(context.Background(), uuid.MustParse(s.ID))
	if err != nil {
		t.Fatal(err)
	}
	if stored.Score != 54 {
		t.Errorf("score changed to %d by a non-owner", stored.Score)
	}
}

func TestUpdateScore_Owner(t *testing.T) {
	e := newEnv(t)
	owner := uuid.New()
	course := e.createCourse(t, owner, "Alby")
	s := e.addScore(t, owner, map[string]any{"course_id": course.ID, "score": 54, "with_friends": "Anna"})

	var updated ScoreResponse
	e.doJSON(t, http.MethodPut, "/api/v1/scores/"+s.ID,
		map[string]any{"course_id": course.ID, "score": 51, "date_played": "2024-06-02"},
		owner, fiber.StatusOK, &updated)
	if updated.Score != 51 || updated.DatePlayed == nil || *updated.DatePlayed != "2024-06-02" {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.WithFriends) != 0 {
		t.Errorf("with_friends = %v; an update overwrites every field", updated.WithFriends)
	}

	// Older clients send the id in the body.
	e.doJSON(t, http.MethodPut, "/api/v1/scores",
		map[string]any{"id": s.ID, "course_id": course.ID, "score": 50}, owner, fiber.StatusOK, &updated)
	if updated.Score != 50 {
		t.Errorf("score = %d, want 50", updated.Score)
	}

	status, _ := e.do(t, http.MethodPut, "/api/v1/scores/"+uuid.NewString(), map[string]any{"course_id": course.ID, "score": 1}, owner)
	if status != fiber.StatusNotFound {
		t.Errorf("missing score: status = %d, want 404", status)
	}

	status, _ = e.do(t, http.MethodDelete, "/api/v1/scores/"+s.ID, nil, owner)
	if status != fiber.StatusNoContent {
		t.Errorf("owner delete: status = %d, want 204", status)
	}
}

func TestListScoresForCourse_RequiresCourseID(t *testing.T) {
	e := newEnv(t)
	status, data := e.do(t, http.MethodGet, "/api/v1/scores", nil, uuid.Nil)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if msg := errorOf(t, data); msg != "courseId is required" {
		t.Errorf("error = %q", msg)
	}
}

func TestListScoresForCourse_Filters(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	course := e.createCourse(t, player, "Alby")
	e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 55, "date_played": "2024-05-03"})
	e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 50, "date_played": "2024-06-10"})
	e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 48, "date_played": "2023-05-20"})
	e.addScore(t, player, map[string]any{"course_id": course.ID, "score": 47})

	tests := []struct {
		query    string
		want     []int
		wantBest any
	}{
		{"", []int{47, 48, 50, 55}, 47},
		{"&year=2024", []int{50, 55}, 50},
		{"&month=5", []int{48, 55}, 48},
		{"&year=2024&month=5", []int{55}, 55},
		{"&year=2022", []int{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []ScoreResponse
			e.doJSON(t, http.MethodGet, "/api/v1/scores?courseId="+course.ID+tt.query, nil, uuid.Nil, fiber.StatusOK, &got)
			scores := []int{}
			for _, s := range got {
				scores = append(scores, s.Score)
			}
			if !slices.Equal(scores, tt.want) {
				t.Errorf("scores = %v, want %v", scores, tt.want)
			}

			var best *ScoreResponse
			e.doJSON(t, http.MethodGet, "/api/v1/scores/best?courseId="+course.ID+tt.query, nil, uuid.Nil, fiber.StatusOK, &best)
			switch want := tt.wantBest.(type) {
			case nil:
				if best != nil {
					t.Errorf("best = %+v, want null", best)
				}
			case int:
				if best == nil || best.Score != want {
					t.Errorf("best = %+v, want %d", best, want)
				}
			}
		})
	}

	for _, path := range []string{"/api/v1/scores", "/api/v1/scores/best"} {
		status, _ := e.do(t, http.MethodGet, path+"?courseId="+course.ID+"&month=13", nil, uuid.Nil)
		if status != fiber.StatusBadRequest {
			t.Errorf("%s month=13: status = %d, want 400", path, status)
		}
	}
}

func TestListAllScores(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	e.saveProfile(t, player, "Putter")
	a, b := e.createCourse(t, player, "Alby"), e.createCourse(t, player, "Järva")
	e.addScore(t, player, map[string]any{"course_id": a.ID, "score": 55, "date_played": "2024-04-01"})
	e.addScore(t, player, map[string]any{"course_id": b.ID, "score": 60, "date_played": "2024-07-01"})

	var all []ScoreResponse
	e.doJSON(t, http.MethodGet, "/api/v1/scores/all", nil, uuid.Nil, fiber.StatusOK, &all)
	if len(all) != 2 {
		t.Fatalf("got %d scores, want 2", len(all))
	}
	if all[0].Courses == nil || all[0].Courses.Name != "Järva" {
		t.Errorf("first row should be the latest round (Järva), got %+v", all[0])
	}
	if all[1].Profiles == nil || all[1].Profiles.Alias != "Putter" {
		t.Errorf("alias missing: %+v", all[1])
	}
}

func TestLatestScorePerCourse(t *testing.T) {
	e := newEnv(t)
	player := uuid.New()
	e.saveProfile(t, player, "Putter")
	alby := e.createCourse(t, player, "Alby")
	e.createCourse(t, player, "Järva")

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	day := func(s string) *time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return &d
	}
	albyID := uuid.MustParse(alby.ID)
	rows := []models.Score{
		{Score: 60, CourseID: albyID, UserID: player, DatePlayed: day("2024-04-01"), CreatedAt: base.Add(2 * time.Hour)},
		{Score: 55, CourseID: albyID, UserID: player, DatePlayed: day("2024-05-20"), CreatedAt: base},
		{Score: 58, CourseID: albyID, UserID: player, CreatedAt: base.Add(4 * time.Hour)},
	}
	for i := range rows {
		if err := e.db.Create(&rows[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		mode string
		want int
	}{
		{"", 55}, // configured default: most recently played
		{"played", 55},
		{"recorded", 58},
		{"earliest", 60},
	}
	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			path := "/api/v1/scores/latest-per-course"
			if tt.mode != "" {
				path += "?mode=" + tt.mode
			}
			var got []LatestScoreResponse
			e.doJSON(t, http.MethodGet, path, nil, uuid.Nil, fiber.StatusOK, &got)
			if len(got) != 2 {
				t.Fatalf("got %d rows, want one per course", len(got))
			}
			if got[0].CourseName != "Alby" || got[0].LatestScore == nil || got[0].LatestScore.Score != tt.want {
				t.Errorf("Alby row = %+v, want score %d", got[0], tt.want)
			}
			if got[0].LatestScore.Profiles == nil || got[0].LatestScore.Profiles.Alias != "Putter" {
				t.Errorf("alias missing: %+v", got[0].LatestScore)
			}
			if got[1].CourseName != "Järva" || got[1].LatestScore != nil {
				t.Errorf("unplayed course row = %+v, want null latestScore", got[1])
			}
		})
	}

	status, _ := e.do(t, http.MethodGet, "/api/v1/scores/latest-per-course?mode=newest", nil, uuid.Nil)
	if status != fiber.StatusBadRequest {
		t.Errorf("unknown mode: status = %d, want 400", status)
	}
}
