package service

import (
	"context"

	"github.com/reuben-baek/entity-service/domain"
)

// Actor names the user performing an extension operation.
// The zero Actor falls back to the token of the request context.
type Actor struct {
	UserID uint
	User   *domain.User
}

func ActorID(userID uint) Actor {
	return Actor{UserID: userID}
}

func ActorFor(user *domain.User) Actor {
	return Actor{User: user}
}

type UserLookup interface {
	Get(ctx context.Context, id uint) (*domain.User, error)
}

type CommentStore interface {
	CreateNew() *domain.Message
	Save(ctx context.Context, message *domain.Message, opts ...SaveOption) error
}

type AttachmentStore interface {
	Save(ctx context.Context, attachment *domain.Attachment, opts ...SaveOption) error
}

type NotificationStore interface {
	CreateNew() *domain.Notification
	Save(ctx context.Context, notification *domain.Notification, opts ...SaveOption) error
}
