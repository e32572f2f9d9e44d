package domain_test

import (
	"testing"
	"time"

	"github.com/reuben-baek/entity-service/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMap_Defaults(t *testing.T) {
	t.Run("task", func(t *testing.T) {
		m := (&domain.Task{}).ToMap()
		assert.Equal(t, uint(0), m["id"])
		assert.Equal(t, "", m["title"])
		assert.Equal(t, false, m["done"])
		assert.Equal(t, []uint{}, m["message_ids"])
		assert.Equal(t, []uint{}, m["attachment_ids"])
		assert.True(t, m["created_at"].(time.Time).IsZero())
	})
	t.Run("product", func(t *testing.T) {
		m := (&domain.Product{}).ToMap()
		assert.Equal(t, uint(0), m["id"])
		assert.Equal(t, "0", m["price"])
		assert.Equal(t, 0, m["stock"])
		assert.Equal(t, []uint{}, m["notification_ids"])
	})
	t.Run("message", func(t *testing.T) {
		m := (&domain.Message{}).ToMap()
		assert.Equal(t, uint(0), m["id"])
		assert.Nil(t, m["created_by_id"])
	})
}

func TestTask_Collections(t *testing.T) {
	task := &domain.Task{ID: 5, Title: "write docs"}
	task.AddMessage(&domain.Message{ID: 1, Message: "done"})
	task.AddAttachment(&domain.Attachment{ID: 3, FileName: "a.txt"})

	m := task.ToMap()
	assert.Equal(t, []uint{1}, m["message_ids"])
	assert.Equal(t, []uint{3}, m["attachment_ids"])
}

func TestProduct_Notifications(t *testing.T) {
	product := &domain.Product{Name: "keyboard", Price: decimal.RequireFromString("49.90"), Stock: 2, MinimumStock: 5}
	product.AddNotification(&domain.Notification{ID: 7, NotificationType: "low-stock"})

	assert.True(t, product.HasNotification(7))
	assert.False(t, product.HasNotification(8))
	assert.True(t, product.BelowMinimum())
	assert.Equal(t, "49.9", product.ToMap()["price"])
}

func TestSetCreatedBy(t *testing.T) {
	t.Run("persisted user", func(t *testing.T) {
		message := &domain.Message{}
		message.SetCreatedBy(&domain.User{ID: 42})
		require.NotNil(t, message.CreatedByID)
		assert.Equal(t, uint(42), *message.CreatedByID)
		assert.Equal(t, uint(42), message.ToMap()["created_by_id"])
	})
	t.Run("anonymous", func(t *testing.T) {
		attachment := &domain.Attachment{}
		attachment.SetCreatedBy(nil)
		assert.Nil(t, attachment.CreatedBy)
		assert.Nil(t, attachment.CreatedByID)
	})
}

func TestParameters(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		value, err := domain.Parameters{"expiryInDays": 3}.Value()
		assert.Nil(t, err)
		assert.JSONEq(t, `{"expiryInDays":3}`, value.(string))

		value, err = domain.Parameters(nil).Value()
		assert.Nil(t, err)
		assert.Equal(t, "{}", value)
	})
	t.Run("scan", func(t *testing.T) {
		var parameters domain.Parameters
		err := parameters.Scan([]byte(`{"minimumStock":5,"unit":"pcs"}`))
		assert.Nil(t, err)
		assert.Equal(t, float64(5), parameters["minimumStock"])
		assert.Equal(t, "pcs", parameters["unit"])

		err = parameters.Scan(nil)
		assert.Nil(t, err)
		assert.Empty(t, parameters)

		err = parameters.Scan(12)
		assert.NotNil(t, err)

		err = parameters.Scan("{broken")
		assert.NotNil(t, err)
	})
}
