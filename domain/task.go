package domain

import "time"

// Task accepts comments and attachments.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	Title       string
	Description string
	Done        bool
	DueAt       *time.Time
	Messages    []*Message    `gorm:"many2many:task_messages;"`
	Attachments []*Attachment `gorm:"many2many:task_attachments;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) GetID() uint {
	return t.ID
}

func (t *Task) AddMessage(message *Message) {
	t.Messages = append(t.Messages, message)
}

func (t *Task) AddAttachment(attachment *Attachment) {
	t.Attachments = append(t.Attachments, attachment)
}

func (t *Task) ToMap() map[string]any {
	return map[string]any{
		"id":             t.ID,
		"title":          t.Title,
		"description":    t.Description,
		"done":           t.Done,
		"due_at":         t.DueAt,
		"message_ids":    idsOf(t.Messages),
		"attachment_ids": idsOf(t.Attachments),
		"created_at":     t.CreatedAt,
		"updated_at":     t.UpdatedAt,
	}
}

func idsOf[E Entity](entities []E) []uint {
	ids := make([]uint, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.GetID())
	}
	return ids
}
