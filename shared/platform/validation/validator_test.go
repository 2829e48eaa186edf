package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sharedDomain "github.com/davicafu/devcamper/shared/domain"
)

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStruct_MessagesUseJSONNames(t *testing.T) {
	err := Struct(sample{Name: "", Email: "nope"})
	assert.ErrorIs(t, err, sharedDomain.ErrInvalid)
	assert.Contains(t, err.Error(), "Please add a name")
	assert.Contains(t, err.Error(), "Please add a valid email")

	err = Struct(sample{Name: "toolong"})
	assert.EqualError(t, err, "name can not be more than 5 characters")

	assert.NoError(t, Struct(sample{Name: "ok"}))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Devworks Bootcamp":         "devworks-bootcamp",
		"ModernTech  Bootcamp!!":    "moderntech-bootcamp",
		"Código Ñandú 2024":         "codigo-nandu-2024",
		"  --Codemasters--  ":       "codemasters",
		"UI/UX & Data Science Camp": "ui-ux-data-science-camp",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}
