//go:build unit

package intents_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"facility-booking/internal/domain/intent"
	"facility-booking/internal/infra/intents"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIntents() (intent.Notification, intent.ChargeRequest) {
	reservationID := uuid.New()
	note := intent.Notification{
		Type:        intent.BookingCreated,
		RecipientID: uuid.New(),
		SubjectID:   reservationID,
		Data:        map[string]string{"total": "115.00"},
	}
	charge := intent.ChargeRequest{
		ReservationID: reservationID,
		Amount:        decimal.RequireFromString("115.00"),
		AmountCents:   11500,
		Currency:      "EUR",
	}
	return note, charge
}

func TestRedisPublisher(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pub := intents.NewRedisPublisher(client, "fb", 1000)
	note, charge := sampleIntents()

	require.NoError(t, pub.Publish(ctx, note, charge, note))

	notes, err := client.XRange(ctx, pub.Stream(intent.KindNotification), "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "notification", notes[0].Values["kind"])

	var gotNote intent.Notification
	require.NoError(t, json.Unmarshal([]byte(notes[0].Values["payload"].(string)), &gotNote))
	assert.Equal(t, note, gotNote)

	charges, err := client.XRange(ctx, "fb:charge_request", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, charges, 1)

	var gotCharge intent.ChargeRequest
	require.NoError(t, json.Unmarshal([]byte(charges[0].Values["payload"].(string)), &gotCharge))
	assert.Equal(t, int64(11500), gotCharge.AmountCents)
	assert.True(t, gotCharge.Amount.Equal(charge.Amount))

	t.Run("nothing to publish", func(t *testing.T) {
		assert.NoError(t, pub.Publish(ctx))
	})

	t.Run("broker failure surfaces", func(t *testing.T) {
		mr.SetError("READONLY")
		defer mr.SetError("")
		assert.Error(t, pub.Publish(ctx, note))
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := intents.NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))
	note, _ := sampleIntents()

	require.NoError(t, pub.Publish(context.Background(), note))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "intent emitted", line["msg"])
	assert.Equal(t, "notification", line["kind"])
	assert.Contains(t, line["payload"], "booking_created")
}
