package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
)

const (
	ReviewCreated = "review.created"
	ReviewUpdated = "review.updated"
	ReviewDeleted = "review.deleted"
)

const ReviewTopic = sharedEvents.TopicReviews

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	meta := sharedEvents.EventMetadata{
		Type:  reflect.TypeOf(sharedEvents.ReviewChanged{}),
		Topic: ReviewTopic,
	}
	return map[string]sharedEvents.EventMetadata{
		ReviewCreated: meta,
		ReviewUpdated: meta,
		ReviewDeleted: meta,
	}
}
