package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/queue"
	"github.com/octabyte/alumni-portal/utils"
	"github.com/octabyte/alumni-portal/utils/logger"
)

const publishTimeout = 3 * time.Second

// Event describes a change of a visitor's session. It never carries tokens.
type Event struct {
	Type     enums.SessionEvent `json:"type"`
	Username string             `json:"username,omitempty"`
	Role     enums.Role         `json:"role,omitempty"`
	At       time.Time          `json:"at"`
}

// Notifier receives session events. Implementations must not block the
// visitor's request for long and never fail it.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) {}

// AMQPNotifier publishes each event as JSON with its type as routing key.
type AMQPNotifier struct {
	publisher queue.Publisher
}

func NewAMQPNotifier(p queue.Publisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: p}
}

func (n *AMQPNotifier) Notify(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	body, err := utils.StructToBytes(ev)
	if err != nil {
		logger.LogError("encode session event", zap.String("type", string(ev.Type)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.publisher.Publish(ctx, string(ev.Type), body); err != nil {
		logger.LogWarn("publish session event",
			zap.String("type", string(ev.Type)),
			zap.String("username", ev.Username),
			zap.Error(err),
		)
	}
}
