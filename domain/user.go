package domain

import "time"

type User struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) GetID() uint {
	return u.ID
}

func (u *User) ToMap() map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}

func userRef(user *User) *uint {
	if user == nil || user.ID == 0 {
		return nil
	}
	id := user.ID
	return &id
}
