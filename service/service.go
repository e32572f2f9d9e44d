package service

import (
	"context"
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/reuben-baek/entity-service/auth"
	"github.com/reuben-baek/entity-service/data"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/notify"
	"github.com/sirupsen/logrus"
)

// Dependencies are the collaborators of the extension operations. Sibling
// stores must share the entity manager of the service using them, so that
// one flush commits the entity and its new comment, attachment or
// notification together.
type Dependencies struct {
	Capabilities  *domain.Capabilities
	Users         UserLookup
	Comments      CommentStore
	Attachments   AttachmentStore
	Notifications NotificationStore
	Publisher     notify.Publisher
}

// Service is the generic entity service for the entity type T, a pointer to
// a struct such as *domain.Task.
type Service[T domain.Entity] struct {
	manager    data.EntityManager
	paginator  data.Paginator
	repository data.EntityRepository[T, uint]
	deps       Dependencies
	sample     T
}

func NewService[T domain.Entity](manager data.EntityManager, paginator data.Paginator, deps Dependencies) *Service[T] {
	var sample T
	sampleType := reflect.TypeOf(sample)
	if sampleType == nil || sampleType.Kind() != reflect.Pointer || sampleType.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("NewService: entity type '%v' is not a pointer to struct", sampleType))
	}
	return &Service[T]{
		manager:    manager,
		paginator:  paginator,
		repository: data.NewRepository[T, uint](manager),
		deps:       deps,
		sample:     sample,
	}
}

// Type is the name of the managed entity type.
func (s *Service[T]) Type() string {
	return domain.TypeName(s.sample)
}

// Get returns the entity or, when there is none with this id, the zero T
// and a nil error.
func (s *Service[T]) Get(ctx context.Context, id uint) (T, error) {
	entity, err := s.repository.FindOne(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, data.NotFoundError) {
			return zero, nil
		}
		return zero, errors.Wrapf(err, "get %s %d", s.Type(), id)
	}
	return entity, nil
}

func (s *Service[T]) GetAll(ctx context.Context) ([]T, error) {
	entities, err := s.repository.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "get all %s", s.Type())
	}
	return entities, nil
}

func (s *Service[T]) Paginate(ctx context.Context, page, limit int) (data.Page[T], error) {
	result, err := data.Paginate[T](ctx, s.paginator, page, limit)
	if err != nil {
		return result, errors.Wrapf(err, "paginate %s", s.Type())
	}
	return result, nil
}

// CreateNew returns a new, unpersisted entity.
func (s *Service[T]) CreateNew() T {
	return reflect.New(reflect.TypeOf(s.sample).Elem()).Interface().(T)
}

// Save persists the entity and, unless WithoutFlush is given, flushes the
// whole unit of work.
func (s *Service[T]) Save(ctx context.Context, entity T, opts ...SaveOption) error {
	o := newSaveOptions(opts)
	if o.force {
		logrus.Debugf("Service[%s].Save: force has no effect", s.Type())
	}
	s.manager.Persist(ctx, entity)
	if !o.flush {
		return nil
	}
	if err := s.manager.Flush(ctx); err != nil {
		return errors.Wrapf(err, "save %s", s.Type())
	}
	return nil
}

func (s *Service[T]) Delete(ctx context.Context, id uint) error {
	entity, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	s.manager.Remove(ctx, entity)
	if err := s.manager.Flush(ctx); err != nil {
		return errors.Wrapf(err, "delete %s %d", s.Type(), id)
	}
	return nil
}

func (s *Service[T]) AddComment(ctx context.Context, id uint, actor Actor, message string, opts ...CommentOption) (*domain.Message, error) {
	if err := s.require(domain.CapabilityCommentable); err != nil {
		return nil, err
	}
	if s.deps.Comments == nil {
		return nil, errors.Newf("%s: no comment store configured", s.Type())
	}
	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	commentable, ok := any(entity).(domain.Commentable)
	if !ok {
		return nil, capabilityViolation(s.Type(), domain.CapabilityCommentable)
	}
	user, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	o := newCommentOptions(opts)
	comment := s.deps.Comments.CreateNew()
	comment.Message = message
	comment.IsSystem = o.system
	comment.SetCreatedBy(user)

	commentable.AddMessage(comment)

	if o.persist {
		if err := s.Save(ctx, entity, WithoutFlush()); err != nil {
			return nil, err
		}
		if err := s.deps.Comments.Save(ctx, comment); err != nil {
			return nil, errors.Wrapf(err, "comment on %s %d", s.Type(), id)
		}
	}
	logrus.Debugf("Service[%s].AddComment: %s %d comment [%d] persist [%t]", s.Type(), s.Type(), id, comment.ID, o.persist)
	return comment, nil
}

func (s *Service[T]) AddAttachment(ctx context.Context, id uint, actor Actor, attachment *domain.Attachment) error {
	if err := s.require(domain.CapabilityUploadable); err != nil {
		return err
	}
	if s.deps.Attachments == nil {
		return errors.Newf("%s: no attachment store configured", s.Type())
	}
	if attachment == nil {
		return errors.Newf("%s: nil attachment", s.Type())
	}
	entity, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	uploadable, ok := any(entity).(domain.Uploadable)
	if !ok {
		return capabilityViolation(s.Type(), domain.CapabilityUploadable)
	}
	user, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	attachment.SetCreatedBy(user)
	if attachment.StorageKey == "" {
		attachment.StorageKey = uuid.NewString()
	}

	uploadable.AddAttachment(attachment)

	if err := s.Save(ctx, entity, WithoutFlush()); err != nil {
		return err
	}
	if err := s.deps.Attachments.Save(ctx, attachment); err != nil {
		return errors.Wrapf(err, "attach to %s %d", s.Type(), id)
	}
	logrus.Debugf("Service[%s].AddAttachment: %s %d attachment [%d] key [%s]", s.Type(), s.Type(), id, attachment.ID, attachment.StorageKey)
	return nil
}

// AddNotification attaches a new notification and publishes it once the unit
// of work is committed. A failed publish leaves the committed records in place.
func (s *Service[T]) AddNotification(ctx context.Context, id uint, actor Actor, notificationType string, params domain.Parameters) (*domain.Notification, error) {
	if err := s.require(domain.CapabilityNotifiable); err != nil {
		return nil, err
	}
	if s.deps.Notifications == nil {
		return nil, errors.Newf("%s: no notification store configured", s.Type())
	}
	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	notifiable, ok := any(entity).(domain.Notifiable)
	if !ok {
		return nil, capabilityViolation(s.Type(), domain.CapabilityNotifiable)
	}
	user, err := s.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	notification := s.deps.Notifications.CreateNew()
	notification.NotificationType = notificationType
	notification.Parameters = params
	notification.SetCreatedBy(user)

	notifiable.AddNotification(notification)

	if err := s.Save(ctx, entity, WithoutFlush()); err != nil {
		return nil, err
	}
	if err := s.deps.Notifications.Save(ctx, notification); err != nil {
		return nil, errors.Wrapf(err, "notify %s %d", s.Type(), id)
	}

	if s.deps.Publisher != nil {
		event := notify.Event{
			ID:             uuid.New(),
			NotificationID: notification.ID,
			Type:           notificationType,
			EntityType:     s.Type(),
			EntityID:       entity.GetID(),
			Parameters:     params,
			CreatedBy:      notification.CreatedByID,
			CreatedAt:      notification.CreatedAt,
		}
		if err := s.deps.Publisher.Publish(ctx, event); err != nil {
			logrus.Warnf("Service[%s].AddNotification: publish %s failed: %v", s.Type(), event.Key(), err)
			return notification, errors.Wrapf(err, "publish notification %d", notification.ID)
		}
	}
	return notification, nil
}

// GetForNotification returns the entity holding the notification, or the
// zero T when there is none.
func (s *Service[T]) GetForNotification(ctx context.Context, notificationID uint) (T, error) {
	var zero T
	if err := s.require(domain.CapabilityNotifiable); err != nil {
		return zero, err
	}
	entity, err := s.repository.FindByNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, data.NotFoundError) {
			return zero, nil
		}
		return zero, errors.Wrapf(err, "get %s for notification %d", s.Type(), notificationID)
	}
	return entity, nil
}

func (s *Service[T]) require(capability domain.Capability) error {
	if s.deps.Capabilities.Has(s.sample, capability) {
		return nil
	}
	return capabilityViolation(s.Type(), capability)
}

func (s *Service[T]) load(ctx context.Context, id uint) (T, error) {
	entity, err := s.repository.FindOne(ctx, id)
	if err != nil {
		if errors.Is(err, data.NotFoundError) {
			return entity, entityNotFound(s.Type(), id)
		}
		return entity, errors.Wrapf(err, "load %s %d", s.Type(), id)
	}
	return entity, nil
}

func (s *Service[T]) resolveActor(ctx context.Context, actor Actor) (*domain.User, error) {
	if actor.User != nil {
		return actor.User, nil
	}
	if actor.UserID != 0 {
		if s.deps.Users == nil {
			return nil, errors.Newf("%s: no user lookup configured", s.Type())
		}
		user, err := s.deps.Users.Get(ctx, actor.UserID)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve user %d", actor.UserID)
		}
		if user == nil {
			return nil, entityNotFound("User", actor.UserID)
		}
		return user, nil
	}
	if token, ok := auth.TokenFrom(ctx); ok {
		return token.User(), nil
	}
	return nil, nil
}
