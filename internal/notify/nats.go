package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSEmitter publishes events as JSON on "<prefix>.<type>".
type NATSEmitter struct {
	conn   *nats.Conn
	prefix string
}

// ConnectNATS dials the server with unlimited reconnects.
func ConnectNATS(url string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("confluence-api"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Warn("nats error", zap.Error(err))
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

// NewNATSEmitter publishes on conn. An empty prefix defaults to "confluence".
func NewNATSEmitter(conn *nats.Conn, prefix string) *NATSEmitter {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = "confluence"
	}
	return &NATSEmitter{conn: conn, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (n *NATSEmitter) Subject(eventType string) string {
	return n.prefix + "." + eventType
}

// Emit publishes the event with its id as the message id header.
func (n *NATSEmitter) Emit(_ context.Context, event Event) error {
	event = event.withDefaults()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := nats.NewMsg(n.Subject(event.Type))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.ID.String())

	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}
