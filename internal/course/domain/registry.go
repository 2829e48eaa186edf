package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
)

const (
	CourseCreated = "course.created"
	CourseUpdated = "course.updated"
	CourseDeleted = "course.deleted"
)

const CourseTopic = sharedEvents.TopicCourses

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	meta := sharedEvents.EventMetadata{
		Type:  reflect.TypeOf(sharedEvents.CourseChanged{}),
		Topic: CourseTopic,
	}
	return map[string]sharedEvents.EventMetadata{
		CourseCreated: meta,
		CourseUpdated: meta,
		CourseDeleted: meta,
	}
}
