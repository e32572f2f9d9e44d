package service

import (
	"github.com/cockroachdb/errors"
	"github.com/reuben-baek/entity-service/data"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/notify"
)

// Container wires the services of one unit of work. All services share the
// entity manager, so a flush from any of them commits the changes of all.
type Container struct {
	Capabilities *domain.Capabilities

	Users         *Service[*domain.User]
	Messages      *Service[*domain.Message]
	Attachments   *Service[*domain.Attachment]
	Notifications *Service[*domain.Notification]

	Tasks     *Service[*domain.Task]
	Products  *Service[*domain.Product]
	Addresses *Service[*domain.Address]
}

func DefaultCapabilities() (*domain.Capabilities, error) {
	capabilities := domain.NewCapabilities()
	if err := capabilities.Register((*domain.Task)(nil), domain.CapabilityCommentable, domain.CapabilityUploadable); err != nil {
		return nil, err
	}
	if err := capabilities.Register((*domain.Product)(nil), domain.CapabilityUploadable, domain.CapabilityNotifiable); err != nil {
		return nil, err
	}
	if err := capabilities.Register((*domain.Address)(nil)); err != nil {
		return nil, err
	}
	return capabilities, nil
}

func NewContainer(manager data.EntityManager, paginator data.Paginator, publisher notify.Publisher) (*Container, error) {
	capabilities, err := DefaultCapabilities()
	if err != nil {
		return nil, errors.Wrap(err, "capabilities")
	}
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}

	c := &Container{Capabilities: capabilities}
	siblings := Dependencies{Capabilities: capabilities}
	c.Users = NewService[*domain.User](manager, paginator, siblings)
	c.Messages = NewService[*domain.Message](manager, paginator, siblings)
	c.Attachments = NewService[*domain.Attachment](manager, paginator, siblings)
	c.Notifications = NewService[*domain.Notification](manager, paginator, siblings)

	deps := Dependencies{
		Capabilities:  capabilities,
		Users:         c.Users,
		Comments:      c.Messages,
		Attachments:   c.Attachments,
		Notifications: c.Notifications,
		Publisher:     publisher,
	}
	c.Tasks = NewService[*domain.Task](manager, paginator, deps)
	c.Products = NewService[*domain.Product](manager, paginator, deps)
	c.Addresses = NewService[*domain.Address](manager, paginator, deps)
	return c, nil
}
