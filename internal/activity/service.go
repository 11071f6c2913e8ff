package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ashiruhammed/farmstarter/internal/events"
	kafkax "github.com/ashiruhammed/farmstarter/internal/kafka"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

// Service consumes user activity events and keeps a per-user counter in
// the KV store. Events are deduplicated by event ID so redelivery does
// not double count.
type Service struct {
	Store store.Store
	Log   logrus.FieldLogger
}

// HandleUserActivity is installed as the consumer handler.
func (s *Service) HandleUserActivity(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	switch env.EventType {
	case events.EventUserSignedUp, events.EventUserLoggedIn, events.EventUserLoggedOut:
	default:
		return nil // ignore
	}

	dkey := fmt.Sprintf(store.KeyDedup, "activity", env.EventID)
	if _, err := s.Store.Get(ctx, dkey); err == nil {
		return nil
	}

	p, err := kafkax.UnwrapPayload[events.UserActivityPayload](env.Payload)
	if err != nil {
		return err
	}
	if p.Username == "" {
		return nil
	}

	key := fmt.Sprintf(store.KeyActivity, p.Username)
	n := 0
	if b, err := s.Store.Get(ctx, key); err == nil {
		n, _ = strconv.Atoi(string(b))
	}
	if err := s.Store.Set(ctx, key, []byte(strconv.Itoa(n+1))); err != nil {
		return err
	}

	if err := s.Store.Set(ctx, dkey, []byte("1")); err != nil {
		s.Log.WithError(err).Warn("activity: dedup marker not persisted")
	}
	return nil
}
