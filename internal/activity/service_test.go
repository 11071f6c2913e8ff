package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashiruhammed/farmstarter/internal/events"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

func message(t *testing.T, eventID, eventType, username string) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(events.UserActivityPayload{Username: username})
	require.NoError(t, err)
	env := events.Envelope{
		EventID:      eventID,
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "test",
		Payload:      payload,
	}
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return kafkago.Message{Value: b}
}

func counter(t *testing.T, st store.Store, username string) string {
	t.Helper()
	b, err := st.Get(context.Background(), fmt.Sprintf(store.KeyActivity, username))
	if err != nil {
		return ""
	}
	return string(b)
}

func TestHandleUserActivity(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := &Service{Store: st, Log: log}

	require.NoError(t, svc.HandleUserActivity(ctx, message(t, "e1", events.EventUserLoggedIn, "alice")))
	require.NoError(t, svc.HandleUserActivity(ctx, message(t, "e2", events.EventUserLoggedOut, "alice")))
	assert.Equal(t, "2", counter(t, st, "alice"))

	t.Run("redelivered event is not counted twice", func(t *testing.T) {
		require.NoError(t, svc.HandleUserActivity(ctx, message(t, "e1", events.EventUserLoggedIn, "alice")))
		assert.Equal(t, "2", counter(t, st, "alice"))
	})

	t.Run("unrelated event types are ignored", func(t *testing.T) {
		require.NoError(t, svc.HandleUserActivity(ctx, message(t, "e3", events.EventCartUpdated, "alice")))
		assert.Equal(t, "2", counter(t, st, "alice"))
	})

	t.Run("malformed envelope is an error", func(t *testing.T) {
		err := svc.HandleUserActivity(ctx, kafkago.Message{Value: []byte("{broken")})
		assert.Error(t, err)
	})
}
