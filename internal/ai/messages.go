package ai

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Helmus101/confluence/internal/entity"
)

// ConnectorMessageInput is the context of the requester's note to a connector.
type ConnectorMessageInput struct {
	RequesterName       string
	RequesterBackground string
	ConnectorName       string
	TargetCompany       string
	Reason              string
}

// ForwardMessageInput is the context of the connector's note to the target.
type ForwardMessageInput struct {
	ConnectorName  string
	RequesterName  string
	RequesterPitch string
	TargetName     string
	TargetCompany  string
}

// MessageGenerator drafts introduction messages. Results are never empty.
type MessageGenerator interface {
	ConnectorMessage(ctx context.Context, in ConnectorMessageInput) entity.IntroMessage
	ForwardMessage(ctx context.Context, in ForwardMessageInput) entity.IntroMessage
}

// MessageWriter is the Completer backed MessageGenerator with templated fallbacks.
type MessageWriter struct {
	completer Completer
	logger    *zap.Logger
}

var _ MessageGenerator = (*MessageWriter)(nil)

// NewMessageWriter wires a writer. A nil completer always uses the templates.
func NewMessageWriter(completer Completer, logger *zap.Logger) *MessageWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageWriter{completer: completer, logger: logger.Named("messages")}
}

// ConnectorMessage drafts the requester's ask to the connector.
func (w *MessageWriter) ConnectorMessage(ctx context.Context, in ConnectorMessageInput) entity.IntroMessage {
	fallback := ConnectorFallback(in)
	return w.generate(ctx, connectorMessagePrompt(in), fallback)
}

// ForwardMessage drafts the connector's note introducing the requester.
func (w *MessageWriter) ForwardMessage(ctx context.Context, in ForwardMessageInput) entity.IntroMessage {
	fallback := ForwardFallback(in)
	return w.generate(ctx, forwardMessagePrompt(in), fallback)
}

func (w *MessageWriter) generate(ctx context.Context, prompt string, fallback entity.IntroMessage) entity.IntroMessage {
	if w.completer == nil {
		return fallback
	}
	reply, err := w.completer.Complete(ctx, messageSystemPrompt, prompt)
	if err != nil {
		w.logger.Warn("message generation failed", zap.Error(err))
		return fallback
	}
	parsed, err := decodeJSON[entity.IntroMessage](reply)
	if err != nil {
		w.logger.Warn("message reply not parseable", zap.Error(err))
		return fallback
	}
	msg := entity.IntroMessage{
		Subject: strings.TrimSpace(parsed.Subject),
		Body:    strings.TrimSpace(parsed.Body),
	}
	if msg.Subject == "" {
		msg.Subject = fallback.Subject
	}
	if msg.Body == "" {
		msg.Body = fallback.Body
	}
	return msg
}

// ConnectorFallback is the templated requester-to-connector message.
func ConnectorFallback(in ConnectorMessageInput) entity.IntroMessage {
	company := orDefault(in.TargetCompany, "your network")
	body := fmt.Sprintf("Hi %s, I'm interested in connecting with someone at %s.",
		orDefault(in.ConnectorName, "there"), company)
	if reason := strings.TrimSpace(in.Reason); reason != "" {
		body += " " + reason
	}
	return entity.IntroMessage{Subject: "Introduction to " + company, Body: body}
}

// ForwardFallback is the templated connector-to-target message.
func ForwardFallback(in ForwardMessageInput) entity.IntroMessage {
	requester := orDefault(in.RequesterName, "a friend of mine")
	body := "Hi! I wanted to introduce you to " + requester + "."
	if pitch := strings.TrimSpace(in.RequesterPitch); pitch != "" {
		body += " " + pitch
	}
	return entity.IntroMessage{Subject: "Introduction: " + requester, Body: body}
}
