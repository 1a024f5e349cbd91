package poller

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/Eduardaskuliesa/Alina-workers/internal/actors"
	"github.com/Eduardaskuliesa/Alina-workers/pkg/logger"
)

type fakeClearer struct {
	cleared []string
	err     error
}

func (f *fakeClearer) ClearCart(_ context.Context, userID string) (actors.Result, error) {
	if f.err != nil {
		return actors.Result{}, f.err
	}
	f.cleared = append(f.cleared, userID)
	return actors.Result{}, nil
}

func newTestPoller(carts CartClearer) *Poller {
	return &Poller{carts: carts, logger: logger.NewNop()}
}

func TestProcess_ClearsCartForBuyer(t *testing.T) {
	clearer := &fakeClearer{}
	p := newTestPoller(clearer)

	p.process(context.Background(), kafka.Message{Value: []byte(`{"user_id":"u1","order_id":"o42"}`)})

	assert.Equal(t, []string{"u1"}, clearer.cleared)
}

func TestProcess_MalformedJSON(t *testing.T) {
	clearer := &fakeClearer{}
	p := newTestPoller(clearer)

	p.process(context.Background(), kafka.Message{Value: []byte(`{not json`)})

	assert.Empty(t, clearer.cleared)
}

func TestProcess_MissingUserID(t *testing.T) {
	clearer := &fakeClearer{}
	p := newTestPoller(clearer)

	p.process(context.Background(), kafka.Message{Value: []byte(`{"order_id":"o42"}`)})
	p.process(context.Background(), kafka.Message{Value: []byte(`{"user_id":""}`)})
	p.process(context.Background(), kafka.Message{Value: []byte(`{"user_id":42}`)})

	assert.Empty(t, clearer.cleared)
}

func TestProcess_ClearCartFailureIsLoggedNotFatal(t *testing.T) {
	clearer := &fakeClearer{err: errors.New("store down")}
	p := newTestPoller(clearer)

	p.process(context.Background(), kafka.Message{Value: []byte(`{"user_id":"u1"}`)})

	assert.Empty(t, clearer.cleared)
}
