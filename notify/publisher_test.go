package notify

import (
	"context"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lowStockEvent() Event {
	author := uint(42)
	return Event{
		ID:             uuid.New(),
		NotificationID: 7,
		Type:           "low-stock",
		EntityType:     "Product",
		EntityID:       5,
		Parameters:     map[string]any{"minimumStock": 3},
		CreatedBy:      &author,
		CreatedAt:      time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEvent_Key(t *testing.T) {
	assert.Equal(t, "Product/5", lowStockEvent().Key())
}

func TestToMessage(t *testing.T) {
	event := lowStockEvent()
	message, err := toMessage(event)
	require.Nil(t, err)

	assert.Equal(t, []byte("Product/5"), message.Key)
	assert.Equal(t, event.CreatedAt, message.Time)
	require.Equal(t, 1, len(message.Headers))
	assert.Equal(t, "low-stock", string(message.Headers[0].Value))

	var decoded Event
	require.Nil(t, json.Unmarshal(message.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.NotificationID, decoded.NotificationID)
	assert.Equal(t, uint(42), *decoded.CreatedBy)
	assert.Equal(t, float64(3), decoded.Parameters["minimumStock"])
}

func TestToMessage_Unencodable(t *testing.T) {
	event := lowStockEvent()
	event.Parameters = map[string]any{"callback": func() {}}
	_, err := toMessage(event)
	assert.NotNil(t, err)
}

func TestLogPublisher(t *testing.T) {
	logger, hook := test.NewNullLogger()
	publisher := NewLogPublisher(logger)

	err := publisher.Publish(context.Background(), lowStockEvent())
	assert.Nil(t, err)
	require.Equal(t, 1, len(hook.Entries))
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, "Product/5", hook.LastEntry().Data["entity"])
}

func TestNopPublisher(t *testing.T) {
	var publisher Publisher = NopPublisher{}
	assert.Nil(t, publisher.Publish(context.Background(), lowStockEvent()))
}
