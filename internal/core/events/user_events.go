package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserCreated     = "user.created"
	UserDeactivated = "user.deactivated"
	UserActivated   = "user.activated"
	UserDeleted     = "user.deleted"
)

// NewUserCreatedEvent is published after the directory persists a new identity.
func NewUserCreatedEvent(userID int64, username string, role string, createdBy int64) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      UserCreated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":    userID,
			"username":   username,
			"role":       role,
			"created_by": createdBy,
		},
	}
}

// NewUserStatusEvent covers activation and deactivation transitions.
func NewUserStatusEvent(eventType string, userID int64, actorID int64) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"actor_id": actorID,
		},
	}
}

// NewUserDeletedEvent is published after an irreversible delete.
func NewUserDeletedEvent(userID int64, actorID int64) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      UserDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"user_id":  userID,
			"actor_id": actorID,
		},
	}
}
