package domain

import (
	"fmt"
	"reflect"

	"github.com/cockroachdb/errors"
)

// Entity is a persisted record managed by a service.
// GetID returns zero until the entity has been flushed.
type Entity interface {
	GetID() uint
	ToMap() map[string]any
}

type Commentable interface {
	Entity
	AddMessage(message *Message)
}

type Uploadable interface {
	Entity
	AddAttachment(attachment *Attachment)
}

type Notifiable interface {
	Entity
	AddNotification(notification *Notification)
	HasNotification(notificationID uint) bool
}

type Capability int

const (
	CapabilityCommentable Capability = iota + 1
	CapabilityUploadable
	CapabilityNotifiable
)

func (c Capability) String() string {
	switch c {
	case CapabilityCommentable:
		return "Commentable"
	case CapabilityUploadable:
		return "Uploadable"
	case CapabilityNotifiable:
		return "Notifiable"
	default:
		return fmt.Sprintf("Capability(%d)", int(c))
	}
}

// Capabilities is the table of capabilities declared per entity type.
// A type only gets a capability through Register.
type Capabilities struct {
	table map[reflect.Type]map[Capability]bool
}

func NewCapabilities() *Capabilities {
	return &Capabilities{table: make(map[reflect.Type]map[Capability]bool)}
}

// Register declares the capabilities of the entity's type. The entity value
// itself is only used for its type; a typed nil pointer is fine.
func (c *Capabilities) Register(entity Entity, capabilities ...Capability) error {
	entityType := reflect.TypeOf(entity)
	if entityType == nil {
		return errors.New("Capabilities.Register: nil entity")
	}
	declared, ok := c.table[entityType]
	if !ok {
		declared = make(map[Capability]bool)
	}
	for _, capability := range capabilities {
		var implemented bool
		switch capability {
		case CapabilityCommentable:
			_, implemented = entity.(Commentable)
		case CapabilityUploadable:
			_, implemented = entity.(Uploadable)
		case CapabilityNotifiable:
			_, implemented = entity.(Notifiable)
		default:
			return errors.Newf("Capabilities.Register: unknown capability %d for %s", int(capability), TypeName(entity))
		}
		if !implemented {
			return errors.Newf("Capabilities.Register: %s does not implement %s", TypeName(entity), capability)
		}
		declared[capability] = true
	}
	c.table[entityType] = declared
	return nil
}

func (c *Capabilities) Has(entity Entity, capability Capability) bool {
	if c == nil {
		return false
	}
	return c.table[reflect.TypeOf(entity)][capability]
}

// Of lists the declared capabilities in their declaration order.
func (c *Capabilities) Of(entity Entity) []Capability {
	var capabilities []Capability
	for _, capability := range []Capability{CapabilityCommentable, CapabilityUploadable, CapabilityNotifiable} {
		if c.Has(entity, capability) {
			capabilities = append(capabilities, capability)
		}
	}
	return capabilities
}

// TypeName is the bare struct name of an entity, "Task" for *Task.
func TypeName(entity any) string {
	entityType := reflect.TypeOf(entity)
	if entityType == nil {
		return "<nil>"
	}
	for entityType.Kind() == reflect.Pointer {
		entityType = entityType.Elem()
	}
	return entityType.Name()
}

// Models lists every persisted type, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Message{},
		&Attachment{},
		&Notification{},
		&Task{},
		&Product{},
		&Address{},
	}
}

func optionalID(id *uint) any {
	if id == nil {
		return nil
	}
	return *id
}
