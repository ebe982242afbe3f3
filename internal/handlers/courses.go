package handlers

// courses.go handles the /api/v1/courses routes: the course registry.
//
// Anyone can read courses. Creating one requires a session; editing or deleting one
// is decided by policy.CanEditCourse / policy.CanDeleteCourse.

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/apperr"
	"github.com/trentd187/discgolf/internal/models"
	"github.com/trentd187/discgolf/internal/policy"
	"github.com/trentd187/discgolf/internal/session"
	"github.com/trentd187/discgolf/internal/store"
	"github.com/trentd187/discgolf/internal/views"
)

// topScoresOnCoursePage is how many best rounds the course page shows.
const topScoresOnCoursePage = 5

// CourseRequest is the JSON body for POST /courses and PUT /courses/:id.
type CourseRequest struct {
	Name         string     `json:"name"`         // Required
	Location     *string    `json:"location"`     // Free text
	Latitude     looseFloat `json:"latitude"`     // Number or numeric string; anything else is null
	Longitude    looseFloat `json:"longitude"`    // Number or numeric string; anything else is null
	ImageURLs    any        `json:"image_urls"`   // List of URLs (at most 5)
	MainImageURL *string    `json:"main_image_url"`
	ImageURL     *string    `json:"image_url"` // Older clients send the cover image under this name
	Description  *string    `json:"description"`
	City         *string    `json:"city"`
	Country      *string    `json:"country"`
}

// toModel validates the request and builds the course it describes.
func (r CourseRequest) toModel() (models.Course, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return models.Course{}, apperr.Required("name")
	}
	images := models.ParseImageList(r.ImageURLs)
	if len(images) > models.MaxImages {
		return models.Course{}, apperr.Validation("image_urls", "image_urls may hold at most 5 images")
	}
	mainImage := optionalText(r.MainImageURL)
	if mainImage == nil {
		mainImage = optionalText(r.ImageURL)
	}
	return models.Course{
		Name:         name,
		Location:     optionalText(r.Location),
		Latitude:     r.Latitude.Value,
		Longitude:    r.Longitude.Value,
		ImageURLs:    models.ImageList(images),
		MainImageURL: mainImage,
		Description:  optionalText(r.Description),
		City:         optionalText(r.City),
		Country:      optionalText(r.Country),
	}, nil
}

// CreateCourse returns a handler for POST /api/v1/courses.
// The caller becomes the course's creator.
func CreateCourse(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := session.From(c)
		if who == nil {
			return apperr.Unauthenticated()
		}

		var req CourseRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		course, err := req.toModel()
		if err != nil {
			return err
		}
		course.CreatedBy = &who.UserID

		if err := st.CreateCourse(c.UserContext(), &course); err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toCourse(course))
	}
}

// ListCourses returns a handler for GET /api/v1/courses: every course, by name.
func ListCourses(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courses, err := st.ListCourses(c.UserContext())
		if err != nil {
			return err
		}
		out := make([]CourseResponse, 0, len(courses))
		for _, course := range courses {
			out = append(out, toCourse(course))
		}
		return c.JSON(out)
	}
}

// GetCourse returns a handler for GET /api/v1/courses/:id: the course page.
func GetCourse(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		course, err := st.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		comps, err := st.CompetitionsForCourse(ctx, id)
		if err != nil {
			return err
		}
		top, err := st.TopScores(ctx, id, topScoresOnCoursePage)
		if err != nil {
			return err
		}

		return c.JSON(CourseDetailResponse{
			CourseResponse: toCourse(*course),
			Gallery:        views.Gallery(course.MainImageURL, course.ImageURLs),
			Competitions:   toCompetitions(comps),
			TopScores:      toScores(top),
		})
	}
}

// UpdateCourse returns a handler for PUT /api/v1/courses/:id.
// Every editable field is overwritten: fields left out of the body are cleared.
func UpdateCourse(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		existing, err := st.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		if err := policy.CanEditCourse(session.From(c), existing); err != nil {
			return err
		}

		var req CourseRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		course, err := req.toModel()
		if err != nil {
			return err
		}
		course.ID = existing.ID
		course.CreatedBy = existing.CreatedBy
		course.CreatedAt = existing.CreatedAt

		if err := st.UpdateCourse(ctx, &course); err != nil {
			return err
		}
		return c.JSON(toCourse(course))
	}
}

// DeleteCourse returns a handler for DELETE /api/v1/courses/:id.
func DeleteCourse(st *store.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		ctx := c.UserContext()

		existing, err := st.GetCourse(ctx, id)
		if err != nil {
			return err
		}
		who := session.From(c)
		if err := policy.CanDeleteCourse(who, existing); err != nil {
			return err
		}
		if err := st.DeleteCourse(ctx, id); err != nil {
			return err
		}
		log.Info("course deleted", zap.Stringer("course_id", id), zap.Stringer("user_id", who.UserID))
		return c.SendStatus(fiber.StatusNoContent)
	}
}
