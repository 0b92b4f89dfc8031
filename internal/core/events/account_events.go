package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered         = "user.registered"
	EventTypePasswordResetRequested = "password_reset.requested"
)

type UserRegisteredEvent struct {
	BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserRegisteredEvent(userID int64, username, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":  userID,
				"username": username,
				"email":    email,
			},
		},
		UserID:   userID,
		Username: username,
		Email:    email,
	}
}

type PasswordResetRequestedEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Link   string `json:"link"`
}

func NewPasswordResetRequestedEvent(userID int64, email, link string) *PasswordResetRequestedEvent {
	return &PasswordResetRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePasswordResetRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"email":   email,
			},
		},
		UserID: userID,
		Email:  email,
		Link:   link,
	}
}
