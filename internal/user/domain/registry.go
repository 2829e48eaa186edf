package domain

import (
	"reflect"

	sharedEvents "github.com/davicafu/devcamper/shared/events"
)

const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

const UserTopic = sharedEvents.TopicUsers

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	meta := sharedEvents.EventMetadata{
		Type:  reflect.TypeOf(sharedEvents.UserChanged{}),
		Topic: UserTopic,
	}
	return map[string]sharedEvents.EventMetadata{
		UserCreated: meta,
		UserUpdated: meta,
		UserDeleted: meta,
	}
}
