package domain

import (
	"database/sql/driver"
	"time"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

type Notification struct {
	ID               uint       `gorm:"primaryKey"`
	NotificationType string     `gorm:"index"`
	Parameters       Parameters `gorm:"type:text"`
	CreatedByID      *uint
	CreatedBy        *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (n *Notification) GetID() uint {
	return n.ID
}

func (n *Notification) SetCreatedBy(user *User) {
	n.CreatedBy = user
	n.CreatedByID = userRef(user)
}

func (n *Notification) ToMap() map[string]any {
	return map[string]any{
		"id":                n.ID,
		"notification_type": n.NotificationType,
		"parameters":        n.Parameters,
		"created_by_id":     optionalID(n.CreatedByID),
		"created_at":        n.CreatedAt,
		"updated_at":        n.UpdatedAt,
	}
}

// Parameters are the free-form arguments of a notification, stored as a JSON
// text column.
type Parameters map[string]any

func (p Parameters) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, errors.Wrap(err, "encode notification parameters")
	}
	return string(encoded), nil
}

func (p *Parameters) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = Parameters{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return errors.Newf("Parameters.Scan: unsupported type %T", src)
	}
	decoded := Parameters{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return errors.Wrap(err, "decode notification parameters")
		}
	}
	*p = decoded
	return nil
}
