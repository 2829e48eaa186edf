package domain

import (
	"time"

	"github.com/google/uuid"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
	sharedValidation "github.com/davicafu/devcamper/shared/platform/validation"
)

type Review struct {
	ID        uuid.UUID `json:"_id"`
	Title     string    `json:"title" validate:"required,max=100"`
	Text      string    `json:"text" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=10"`
	CreatedAt time.Time `json:"createdAt"`
	Bootcamp  uuid.UUID `json:"bootcamp"`
	User      uuid.UUID `json:"user"`
}

func (r *Review) PartitionKey() string {
	return r.Bootcamp.String()
}

type ReviewInput struct {
	Title  string `json:"title"`
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

type ReviewPatch struct {
	Title  *string `json:"title"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating"`
}

func NewReview(bootcamp, author uuid.UUID, in ReviewInput) (*Review, error) {
	r := &Review{
		ID:        uuid.New(),
		Title:     in.Title,
		Text:      in.Text,
		Rating:    in.Rating,
		CreatedAt: time.Now().UTC(),
		Bootcamp:  bootcamp,
		User:      author,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Review) Validate() error {
	return sharedValidation.Struct(r)
}

func (r *Review) Apply(p ReviewPatch) error {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	return r.Validate()
}

func (r *Review) ToEvent() sharedEvents.ReviewChanged {
	return sharedEvents.ReviewChanged{
		ID:         r.ID.String(),
		BootcampID: r.Bootcamp.String(),
		UserID:     r.User.String(),
		Rating:     r.Rating,
	}
}
