package service_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/reuben-baek/entity-service/auth"
	"github.com/reuben-baek/entity-service/data"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/notify"
	"github.com/reuben-baek/entity-service/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logrus.SetLevel(logrus.DebugLevel)
}

type recordingManager struct {
	data.EntityManager
	persisted int
	removed   int
	flushed   int
}

func (r *recordingManager) Persist(ctx context.Context, entity any) {
	r.persisted++
	r.EntityManager.Persist(ctx, entity)
}

func (r *recordingManager) Remove(ctx context.Context, entity any) {
	r.removed++
	r.EntityManager.Remove(ctx, entity)
}

func (r *recordingManager) Flush(ctx context.Context) error {
	r.flushed++
	return r.EntityManager.Flush(ctx)
}

func (r *recordingManager) untouched() bool {
	return r.persisted == 0 && r.removed == 0 && r.flushed == 0
}

func (r *recordingManager) reset() {
	r.persisted, r.removed, r.flushed = 0, 0, 0
}

type fakePublisher struct {
	events []notify.Event
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event notify.Event) error {
	f.events = append(f.events, event)
	return f.err
}

type fixture struct {
	container *service.Container
	manager   *recordingManager
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	memManager, err := data.NewMemEntityManager(domain.Models()...)
	require.Nil(t, err)
	manager := &recordingManager{EntityManager: memManager}
	publisher := &fakePublisher{}
	container, err := service.NewContainer(manager, memManager, publisher)
	require.Nil(t, err)
	return &fixture{container: container, manager: manager, publisher: publisher}
}

// seed stores task 5 and user 42.
func (f *fixture) seed(t *testing.T) (*domain.Task, *domain.User) {
	ctx := context.Background()
	user := &domain.User{ID: 42, Name: "reuben.b"}
	task := &domain.Task{ID: 5, Title: "write docs"}
	require.Nil(t, f.container.Users.Save(ctx, user, service.WithoutFlush()))
	require.Nil(t, f.container.Tasks.Save(ctx, task))
	f.manager.reset()
	return task, user
}

func TestService_CreateNew(t *testing.T) {
	f := newFixture(t)

	task := f.container.Tasks.CreateNew()
	require.NotNil(t, task)
	m := task.ToMap()
	assert.Equal(t, uint(0), m["id"])
	assert.Equal(t, "", m["title"])
	assert.Equal(t, []uint{}, m["message_ids"])

	other := f.container.Tasks.CreateNew()
	assert.NotSame(t, task, other)
	assert.Equal(t, "Task", f.container.Tasks.Type())
}

func TestService_CRUD(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tasks := f.container.Tasks

	t.Run("save and get", func(t *testing.T) {
		task := tasks.CreateNew()
		task.Title = "round trip"
		require.Nil(t, tasks.Save(ctx, task))
		assert.NotEmpty(t, task.ID)

		found, err := tasks.Get(ctx, task.ID)
		assert.Nil(t, err)
		require.NotNil(t, found)
		assert.Equal(t, task.ID, found.ID)
		assert.Equal(t, "round trip", found.Title)
	})
	t.Run("get absent", func(t *testing.T) {
		found, err := tasks.Get(ctx, 404)
		assert.Nil(t, err)
		assert.Nil(t, found)
	})
	t.Run("force is accepted", func(t *testing.T) {
		task := &domain.Task{Title: "forced"}
		assert.Nil(t, tasks.Save(ctx, task, service.Force()))
		assert.NotEmpty(t, task.ID)
	})
	t.Run("flush commits every pending change", func(t *testing.T) {
		address := &domain.Address{City: "Seoul"}
		require.Nil(t, f.container.Addresses.Save(ctx, address, service.WithoutFlush()))
		found, err := f.container.Addresses.Get(ctx, 1)
		assert.Nil(t, err)
		assert.Nil(t, found)

		require.Nil(t, tasks.Save(ctx, &domain.Task{Title: "unrelated"}))
		assert.NotEmpty(t, address.ID)
		found, err = f.container.Addresses.Get(ctx, address.ID)
		assert.Nil(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Seoul", found.City)
	})
	t.Run("get all", func(t *testing.T) {
		all, err := tasks.GetAll(ctx)
		assert.Nil(t, err)
		assert.Equal(t, 3, len(all))
	})
	t.Run("delete", func(t *testing.T) {
		task := &domain.Task{Title: "delete me"}
		require.Nil(t, tasks.Save(ctx, task))

		require.Nil(t, tasks.Delete(ctx, task.ID))
		found, err := tasks.Get(ctx, task.ID)
		assert.Nil(t, err)
		assert.Nil(t, found)
	})
	t.Run("delete missing", func(t *testing.T) {
		f.manager.reset()
		err := tasks.Delete(ctx, 404)
		assert.True(t, errors.Is(err, service.EntityNotFoundError), "%+v", err)
		assert.True(t, f.manager.untouched())
	})
	t.Run("paginate", func(t *testing.T) {
		page, err := tasks.Paginate(ctx, 1, 2)
		assert.Nil(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, len(page.Items))
		assert.True(t, page.HasNext())
	})
}

func TestService_AddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("comment by user id", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		comment, err := f.container.Tasks.AddComment(ctx, 5, service.ActorID(42), "done")
		require.Nil(t, err)
		assert.NotEmpty(t, comment.ID)
		assert.Equal(t, "done", comment.Message)
		assert.False(t, comment.IsSystem)
		require.NotNil(t, comment.CreatedBy)
		assert.Equal(t, uint(42), comment.CreatedBy.ID)
		assert.Equal(t, 2, f.manager.persisted)
		assert.Equal(t, 1, f.manager.flushed)

		task, err := f.container.Tasks.Get(ctx, 5)
		require.Nil(t, err)
		require.Equal(t, 1, len(task.Messages))
		assert.Equal(t, comment.ID, task.Messages[0].ID)

		stored, err := f.container.Messages.Get(ctx, comment.ID)
		require.Nil(t, err)
		assert.Equal(t, "done", stored.Message)
		assert.Equal(t, uint(42), *stored.CreatedByID)
	})
	t.Run("system comment", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		comment, err := f.container.Tasks.AddComment(ctx, 5, service.ActorID(42), "status changed", service.AsSystem())
		require.Nil(t, err)
		assert.True(t, comment.IsSystem)
	})
	t.Run("without persist", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		comment, err := f.container.Tasks.AddComment(ctx, 5, service.ActorID(42), "draft", service.WithoutPersist())
		require.Nil(t, err)
		assert.Empty(t, comment.ID)
		assert.True(t, f.manager.untouched())

		task, _ := f.container.Tasks.Get(ctx, 5)
		assert.Empty(t, task.Messages)
	})
	t.Run("author from token", func(t *testing.T) {
		f := newFixture(t)
		_, user := f.seed(t)

		ctx := auth.WithToken(context.Background(), auth.NewToken(user))
		comment, err := f.container.Tasks.AddComment(ctx, 5, service.Actor{}, "signed in")
		require.Nil(t, err)
		assert.Same(t, user, comment.CreatedBy)
	})
	t.Run("explicit user wins over token", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		other := &domain.User{ID: 7, Name: "other"}
		ctx := auth.WithToken(context.Background(), auth.NewToken(other))
		comment, err := f.container.Tasks.AddComment(ctx, 5, service.ActorID(42), "explicit")
		require.Nil(t, err)
		assert.Equal(t, uint(42), comment.CreatedBy.ID)

		author := &domain.User{ID: 9, Name: "preloaded"}
		comment, err = f.container.Tasks.AddComment(ctx, 5, service.ActorFor(author), "preloaded")
		require.Nil(t, err)
		assert.Same(t, author, comment.CreatedBy)
	})
	t.Run("anonymous", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		comment, err := f.container.Tasks.AddComment(ctx, 5, service.Actor{}, "who am i")
		require.Nil(t, err)
		assert.Nil(t, comment.CreatedBy)
		assert.Nil(t, comment.CreatedByID)
	})
	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		_, err := f.container.Tasks.AddComment(ctx, 5, service.ActorID(404), "ghost")
		assert.True(t, errors.Is(err, service.EntityNotFoundError), "%+v", err)
		assert.True(t, f.manager.untouched())
	})
	t.Run("unknown task", func(t *testing.T) {
		f := newFixture(t)
		f.seed(t)

		_, err := f.container.Tasks.AddComment(ctx, 404, service.ActorID(42), "nowhere")
		assert.True(t, errors.Is(err, service.EntityNotFoundError), "%+v", err)
		assert.True(t, f.manager.untouched())
	})
}

func TestService_AddAttachment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	attachment := &domain.Attachment{FileName: "spec.pdf", ContentType: "application/pdf", Size: 1024}
	err := f.container.Tasks.AddAttachment(ctx, 5, service.ActorID(42), attachment)
	require.Nil(t, err)
	assert.NotEmpty(t, attachment.ID)
	assert.NotEmpty(t, attachment.StorageKey)
	assert.Equal(t, uint(42), *attachment.CreatedByID)

	task, err := f.container.Tasks.Get(ctx, 5)
	require.Nil(t, err)
	require.Equal(t, 1, len(task.Attachments))
	assert.Equal(t, attachment.ID, task.Attachments[0].ID)

	t.Run("keeps given storage key", func(t *testing.T) {
		keyed := &domain.Attachment{FileName: "b.txt", StorageKey: "bucket/b.txt"}
		require.Nil(t, f.container.Tasks.AddAttachment(ctx, 5, service.Actor{}, keyed))
		assert.Equal(t, "bucket/b.txt", keyed.StorageKey)
	})
	t.Run("nil attachment", func(t *testing.T) {
		err := f.container.Tasks.AddAttachment(ctx, 5, service.Actor{}, nil)
		assert.NotNil(t, err)
	})
}

func TestService_Notifications(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	keyboard := &domain.Product{Name: "keyboard", Stock: 1, MinimumStock: 3}
	require.Nil(t, f.container.Products.Save(ctx, keyboard))
	f.manager.reset()

	notification, err := f.container.Products.AddNotification(ctx, keyboard.ID, service.ActorID(42), "low-stock",
		domain.Parameters{"minimumStock": 3, "expiryInDays": 7})
	require.Nil(t, err)
	assert.NotEmpty(t, notification.ID)
	assert.Equal(t, "low-stock", notification.NotificationType)
	assert.Equal(t, uint(42), *notification.CreatedByID)
	assert.Equal(t, 2, f.manager.persisted)
	assert.Equal(t, 1, f.manager.flushed)

	t.Run("event published", func(t *testing.T) {
		require.Equal(t, 1, len(f.publisher.events))
		event := f.publisher.events[0]
		assert.Equal(t, notification.ID, event.NotificationID)
		assert.Equal(t, "Product", event.EntityType)
		assert.Equal(t, keyboard.ID, event.EntityID)
		assert.Equal(t, 3, event.Parameters["minimumStock"])
		assert.False(t, event.CreatedAt.IsZero())
	})
	t.Run("get for notification", func(t *testing.T) {
		found, err := f.container.Products.GetForNotification(ctx, notification.ID)
		assert.Nil(t, err)
		require.NotNil(t, found)
		assert.Equal(t, keyboard.ID, found.ID)

		missing, err := f.container.Products.GetForNotification(ctx, notification.ID+100)
		assert.Nil(t, err)
		assert.Nil(t, missing)
	})
	t.Run("publish failure keeps the records", func(t *testing.T) {
		f.publisher.err = errors.New("broker down")
		defer func() { f.publisher.err = nil }()

		second, err := f.container.Products.AddNotification(ctx, keyboard.ID, service.ActorID(42), "restock", nil)
		assert.NotNil(t, err)
		require.NotNil(t, second)
		stored, err := f.container.Notifications.Get(ctx, second.ID)
		assert.Nil(t, err)
		assert.NotNil(t, stored)
	})
}

func TestService_CapabilityViolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	product := &domain.Product{Name: "mouse"}
	require.Nil(t, f.container.Products.Save(ctx, product))
	address := &domain.Address{City: "Seoul"}
	require.Nil(t, f.container.Addresses.Save(ctx, address))

	t.Run("comment on product", func(t *testing.T) {
		f.manager.reset()
		_, err := f.container.Products.AddComment(ctx, product.ID, service.ActorID(42), "nope")
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
		assert.Contains(t, err.Error(), "Product is not implementing Commentable interface")
		assert.True(t, f.manager.untouched())

		reloaded, _ := f.container.Products.Get(ctx, product.ID)
		assert.Equal(t, product.ID, reloaded.ID)
		messages, _ := f.container.Messages.GetAll(ctx)
		assert.Empty(t, messages)
	})
	t.Run("attach to address", func(t *testing.T) {
		f.manager.reset()
		err := f.container.Addresses.AddAttachment(ctx, address.ID, service.ActorID(42), &domain.Attachment{FileName: "a.txt"})
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
		assert.True(t, f.manager.untouched())

		attachments, _ := f.container.Attachments.GetAll(ctx)
		assert.Empty(t, attachments)
	})
	t.Run("notify task", func(t *testing.T) {
		f.manager.reset()
		_, err := f.container.Tasks.AddNotification(ctx, 5, service.ActorID(42), "due-soon", domain.Parameters{})
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
		assert.Contains(t, err.Error(), "Task is not implementing Notifiable interface")
		assert.True(t, f.manager.untouched())

		notifications, _ := f.container.Notifications.GetAll(ctx)
		assert.Empty(t, notifications)
		assert.Empty(t, f.publisher.events)
	})
	t.Run("task for notification", func(t *testing.T) {
		_, err := f.container.Tasks.GetForNotification(ctx, 1)
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
	})
	t.Run("checked before lookup", func(t *testing.T) {
		_, err := f.container.Addresses.AddComment(ctx, 404, service.ActorID(42), "missing and unsupported")
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
		assert.False(t, errors.Is(err, service.EntityNotFoundError))
	})
	t.Run("sibling services declare nothing", func(t *testing.T) {
		_, err := f.container.Messages.AddComment(ctx, 1, service.Actor{}, "meta")
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
	})
	t.Run("undeclared structural match", func(t *testing.T) {
		capabilities := domain.NewCapabilities()
		products := service.NewService[*domain.Product](f.manager, nil, service.Dependencies{
			Capabilities:  capabilities,
			Notifications: f.container.Notifications,
		})
		_, err := products.AddNotification(ctx, product.ID, service.Actor{}, "low-stock", nil)
		assert.True(t, errors.Is(err, service.CapabilityViolationError), "%+v", err)
	})
}

func TestNewService_PanicsOnValueType(t *testing.T) {
	assert.Panics(t, func() {
		service.NewService[valueEntity](nil, nil, service.Dependencies{})
	})
}

type valueEntity struct{}

func (valueEntity) GetID() uint           { return 0 }
func (valueEntity) ToMap() map[string]any { return map[string]any{} }
