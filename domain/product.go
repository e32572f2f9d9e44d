package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product accepts attachments and stock notifications.
type Product struct {
	ID            uint `gorm:"primaryKey"`
	Name          string
	Price         decimal.Decimal `gorm:"type:text"`
	Stock         int
	MinimumStock  int
	Attachments   []*Attachment   `gorm:"many2many:product_attachments;"`
	Notifications []*Notification `gorm:"many2many:product_notifications;"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (p *Product) GetID() uint {
	return p.ID
}

func (p *Product) AddAttachment(attachment *Attachment) {
	p.Attachments = append(p.Attachments, attachment)
}

func (p *Product) AddNotification(notification *Notification) {
	p.Notifications = append(p.Notifications, notification)
}

func (p *Product) HasNotification(notificationID uint) bool {
	for _, n := range p.Notifications {
		if n.ID == notificationID {
			return true
		}
	}
	return false
}

// BelowMinimum reports whether stock dropped under the minimum level.
func (p *Product) BelowMinimum() bool {
	return p.Stock < p.MinimumStock
}

func (p *Product) ToMap() map[string]any {
	return map[string]any{
		"id":               p.ID,
		"name":             p.Name,
		"price":            p.Price.String(),
		"stock":            p.Stock,
		"minimum_stock":    p.MinimumStock,
		"attachment_ids":   idsOf(p.Attachments),
		"notification_ids": idsOf(p.Notifications),
		"created_at":       p.CreatedAt,
		"updated_at":       p.UpdatedAt,
	}
}
