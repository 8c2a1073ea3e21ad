package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/usercredential/internal/credential/entity"
	"github.com/shandysiswandi/usercredential/internal/pkg/instrument"
	"github.com/shandysiswandi/usercredential/internal/pkg/messaging"
	"go.opentelemetry.io/otel/codes"
)

const keyOfAttemptID string = "attempt_id"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	if ins == nil {
		ins = instrument.NewNoop()
	}
	return &Messaging{client: client, ins: ins}
}

// PublishAttempt publishes ev to entity.AttemptDestination keyed by username.
func (m *Messaging) PublishAttempt(ctx context.Context, ev entity.AttemptEvent) error {
	ctx, span := m.ins.Tracer("credential.outbound.mq").Start(ctx, "PublishAttempt")
	defer span.End()

	body, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	aID := ev.AttemptID
	if aID == "" {
		aID = instrument.AttemptID(ctx)
	}
	if _, err := m.client.Publish(ctx, entity.AttemptDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(ev.Username),
		Headers: []messaging.Header{{Key: keyOfAttemptID, Value: []byte(aID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
