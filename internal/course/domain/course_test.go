package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

func validCourse() CourseInput {
	return CourseInput{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        8,
		Tuition:      8000,
		MinimumSkill: SkillBeginner,
	}
}

func TestNewCourse(t *testing.T) {
	bootcamp, owner := uuid.New(), uuid.New()
	c, err := NewCourse(bootcamp, owner, validCourse())
	require.NoError(t, err)

	assert.Equal(t, bootcamp, c.Bootcamp)
	assert.Equal(t, owner, c.User)
	assert.Equal(t, bootcamp.String(), c.PartitionKey())
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewCourse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *CourseInput)
		message string
	}{
		{"missing title", func(in *CourseInput) { in.Title = "" }, "Please add a title"},
		{"missing weeks", func(in *CourseInput) { in.Weeks = 0 }, "Please add a weeks"},
		{"missing tuition", func(in *CourseInput) { in.Tuition = 0 }, "Please add a tuition"},
		{"bad skill", func(in *CourseInput) { in.MinimumSkill = "expert" }, "minimumSkill must be one of: beginner intermediate advanced"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validCourse()
			tc.mutate(&in)
			_, err := NewCourse(uuid.New(), uuid.New(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, sharedDomain.ErrInvalid)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestCourseApply(t *testing.T) {
	c, err := NewCourse(uuid.New(), uuid.New(), validCourse())
	require.NoError(t, err)

	title := "Full Stack"
	changed, err := c.Apply(CoursePatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "Full Stack", c.Title)

	tuition := 9000.0
	changed, err = c.Apply(CoursePatch{Tuition: &tuition})
	require.NoError(t, err)
	assert.True(t, changed)

	skill := "guru"
	_, err = c.Apply(CoursePatch{MinimumSkill: &skill})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalid)
}

func TestCourseToEvent(t *testing.T) {
	c, err := NewCourse(uuid.New(), uuid.New(), validCourse())
	require.NoError(t, err)

	evt := c.ToEvent()
	assert.Equal(t, c.ID.String(), evt.ID)
	assert.Equal(t, c.Bootcamp.String(), evt.BootcampID)
	assert.Equal(t, 8000.0, evt.Tuition)
}
