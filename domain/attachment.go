package domain

import "time"

type Attachment struct {
	ID          uint `gorm:"primaryKey"`
	FileName    string
	ContentType string
	Size        int64
	StorageKey  string `gorm:"index"`
	CreatedByID *uint
	CreatedBy   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (a *Attachment) GetID() uint {
	return a.ID
}

func (a *Attachment) SetCreatedBy(user *User) {
	a.CreatedBy = user
	a.CreatedByID = userRef(user)
}

func (a *Attachment) ToMap() map[string]any {
	return map[string]any{
		"id":            a.ID,
		"file_name":     a.FileName,
		"content_type":  a.ContentType,
		"size":          a.Size,
		"storage_key":   a.StorageKey,
		"created_by_id": optionalID(a.CreatedByID),
		"created_at":    a.CreatedAt,
		"updated_at":    a.UpdatedAt,
	}
}
