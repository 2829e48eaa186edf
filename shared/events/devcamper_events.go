package events

// Payloads que viajan dentro de IntegrationEvent.Data.

type BootcampChanged struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
}

type CourseChanged struct {
	ID         string  `json:"id"`
	BootcampID string  `json:"bootcampId"`
	UserID     string  `json:"userId"`
	Title      string  `json:"title"`
	Tuition    float64 `json:"tuition"`
}

type ReviewChanged struct {
	ID         string `json:"id"`
	BootcampID string `json:"bootcampId"`
	UserID     string `json:"userId"`
	Rating     int    `json:"rating"`
}

type UserChanged struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Topics del bus; cada agregado publica en el suyo.
const (
	TopicBootcamps = "bootcamps"
	TopicCourses   = "courses"
	TopicReviews   = "reviews"
	TopicUsers     = "users"
)

// AllTopics son los topics a los que se suscriben los consumidores transversales (analítica).
var AllTopics = []string{TopicBootcamps, TopicCourses, TopicReviews, TopicUsers}
