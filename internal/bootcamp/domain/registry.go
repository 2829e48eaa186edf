package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
)

const (
	BootcampCreated = "bootcamp.created"
	BootcampUpdated = "bootcamp.updated"
	BootcampDeleted = "bootcamp.deleted"
)

const BootcampTopic = sharedEvents.TopicBootcamps

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	meta := sharedEvents.EventMetadata{
		Type:  reflect.TypeOf(sharedEvents.BootcampChanged{}),
		Topic: BootcampTopic,
	}
	return map[string]sharedEvents.EventMetadata{
		BootcampCreated: meta,
		BootcampUpdated: meta,
		BootcampDeleted: meta,
	}
}
