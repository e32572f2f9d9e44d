package domain

import "time"

// Message is a comment attached to a Commentable entity.
type Message struct {
	ID          uint `gorm:"primaryKey"`
	Message     string
	IsSystem    bool
	CreatedByID *uint
	CreatedBy   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m *Message) GetID() uint {
	return m.ID
}

func (m *Message) SetCreatedBy(user *User) {
	m.CreatedBy = user
	m.CreatedByID = userRef(user)
}

func (m *Message) ToMap() map[string]any {
	return map[string]any{
		"id":            m.ID,
		"message":       m.Message,
		"is_system":     m.IsSystem,
		"created_by_id": optionalID(m.CreatedByID),
		"created_at":    m.CreatedAt,
		"updated_at":    m.UpdatedAt,
	}
}
