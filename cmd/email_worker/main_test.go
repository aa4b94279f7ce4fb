package main

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/prison-staff-admin/pkg/helpers"
)

type ackRecorder struct {
	acked, requeued, dropped int
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	if requeue {
		a.requeued++
	} else {
		a.dropped++
	}
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type stubSender struct{ err error }

func (s stubSender) Send(context.Context, string, string, string, string) error { return s.err }

func TestHandle(t *testing.T) {
	logger := helpers.NewDiscardLogger()
	cases := []struct {
		name                     string
		body                     string
		sendErr                  error
		acked, requeued, dropped int
	}{
		{"delivered", `{"to":"a@x.com","subject":"Hi","text":"x"}`, nil, 1, 0, 0},
		{"not json", `{`, nil, 0, 0, 1},
		{"unknown template", `{"to":"a@x.com","template":"nope"}`, nil, 0, 0, 1},
		{"mailgun down", `{"to":"a@x.com","subject":"Hi","text":"x"}`, errors.New("503"), 0, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ack := &ackRecorder{}
			handle(context.Background(), logger, stubSender{err: tc.sendErr}, amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(tc.body)})
			assert.Equal(t, tc.acked, ack.acked)
			assert.Equal(t, tc.requeued, ack.requeued)
			assert.Equal(t, tc.dropped, ack.dropped)
		})
	}
}
