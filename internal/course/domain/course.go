package domain

import (
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedValidation "github.com/davicafu/devcamper/shared/platform/validation"
)

// Niveles mínimos admitidos en un curso.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

type Course struct {
	ID                   uuid.UUID `json:"_id"`
	Title                string    `json:"title" validate:"required,max=100"`
	Description          string    `json:"description" validate:"required"`
	Weeks                int       `json:"weeks" validate:"required,min=1"`
	Tuition              float64   `json:"tuition" validate:"required,min=0"`
	MinimumSkill         string    `json:"minimumSkill" validate:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`
	Bootcamp             uuid.UUID `json:"bootcamp"`
	User                 uuid.UUID `json:"user"`
}

func (c *Course) PartitionKey() string {
	return c.Bootcamp.String()
}

// CourseInput son los campos que envía el cliente al crear un curso.
type CourseInput struct {
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Weeks                int     `json:"weeks"`
	Tuition              float64 `json:"tuition"`
	MinimumSkill         string  `json:"minimumSkill"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

// CoursePatch es una actualización parcial.
type CoursePatch struct {
	Title                *string  `json:"title"`
	Description          *string  `json:"description"`
	Weeks                *int     `json:"weeks"`
	Tuition              *float64 `json:"tuition"`
	MinimumSkill         *string  `json:"minimumSkill"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

func NewCourse(bootcamp, owner uuid.UUID, in CourseInput) (*Course, error) {
	c := &Course{
		ID:                   uuid.New(),
		Title:                in.Title,
		Description:          in.Description,
		Weeks:                in.Weeks,
		Tuition:              in.Tuition,
		MinimumSkill:         in.MinimumSkill,
		ScholarshipAvailable: in.ScholarshipAvailable,
		CreatedAt:            time.Now().UTC(),
		Bootcamp:             bootcamp,
		User:                 owner,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Course) Validate() error {
	return sharedValidation.Struct(c)
}

// Apply aplica el patch; el bootcamp y el propietario no cambian nunca.
// Devuelve true si cambió la matrícula (hay que recalcular la media del bootcamp).
func (c *Course) Apply(p CoursePatch) (bool, error) {
	tuitionChanged := false
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Weeks != nil {
		c.Weeks = *p.Weeks
	}
	if p.Tuition != nil && *p.Tuition != c.Tuition {
		c.Tuition = *p.Tuition
		tuitionChanged = true
	}
	if p.MinimumSkill != nil {
		c.MinimumSkill = *p.MinimumSkill
	}
	if p.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *p.ScholarshipAvailable
	}
	return tuitionChanged, c.Validate()
}

func (c *Course) ToEvent() sharedEvents.CourseChanged {
	return sharedEvents.CourseChanged{
		ID:         c.ID.String(),
		BootcampID: c.Bootcamp.String(),
		UserID:     c.User.String(),
		Title:      c.Title,
		Tuition:    c.Tuition,
	}
}
