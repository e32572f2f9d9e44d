package domain

import "time"

type Address struct {
	ID         uint `gorm:"primaryKey"`
	Street     string
	City       string
	PostalCode string
	Country    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Address) GetID() uint {
	return a.ID
}

func (a *Address) ToMap() map[string]any {
	return map[string]any{
		"id":          a.ID,
		"street":      a.Street,
		"city":        a.City,
		"postal_code": a.PostalCode,
		"country":     a.Country,
		"created_at":  a.CreatedAt,
		"updated_at":  a.UpdatedAt,
	}
}
