package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/carelink-go-api/internal/models"
	"github.com/noah-isme/carelink-go-api/internal/observability"
)

// PushSender abstracts delivery of a push message to a device token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]interface{}) error
}

// AcceptanceNotifier tells a senior their request was picked up. Delivery is
// best-effort: it runs outside the transition's transaction and every failure
// is logged and swallowed, never surfaced to the caller.
type AcceptanceNotifier struct {
	push    PushSender
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	timeout time.Duration
}

type acceptedEvent struct {
	RequestID    uint      `json:"request_id"`
	RequestTitle string    `json:"request_title"`
	SeniorID     uint      `json:"senior_id"`
	StudentID    uint      `json:"student_id"`
	StudentName  string    `json:"student_name"`
	SentAt       time.Time `json:"sent_at"`
}

// NewAcceptanceNotifier constructs the notifier. Both the push sender and the
// NATS connection are optional; whatever is wired gets used.
func NewAcceptanceNotifier(push PushSender, natsConn *nats.Conn, subject string, logger zerolog.Logger) *AcceptanceNotifier {
	return &AcceptanceNotifier{
		push:    push,
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "acceptance_notifier").Logger(),
		timeout: 10 * time.Second,
	}
}

// NotifyAccepted dispatches the acceptance alert. Intended to be called in
// its own goroutine after the assignment has committed.
func (n *AcceptanceNotifier) NotifyAccepted(request models.ServiceRequest, senior models.Senior, student models.Student) {
	if n == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	title := request.Title
	if title == "" {
		title = "Service Request"
	}

	if n.push != nil && senior.PushToken != "" {
		err := n.push.Send(ctx, senior.PushToken, "Request Accepted!",
			fmt.Sprintf("%s has accepted your request: %s", student.FullName, title),
			map[string]interface{}{
				"type":          "request_accepted",
				"request_id":    request.ID,
				"student_name":  student.FullName,
				"request_title": title,
			})
		if err != nil {
			observability.PushDeliveries().WithLabelValues("failure").Inc()
			n.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("failed to deliver acceptance push")
		} else {
			observability.PushDeliveries().WithLabelValues("success").Inc()
		}
	}

	if n.nats != nil && n.subject != "" {
		payload, err := json.Marshal(acceptedEvent{
			RequestID:    request.ID,
			RequestTitle: title,
			SeniorID:     senior.ID,
			StudentID:    student.ID,
			StudentName:  student.FullName,
			SentAt:       time.Now().UTC(),
		})
		if err == nil {
			err = n.nats.Publish(n.subject, payload)
		}
		if err != nil {
			n.logger.Warn().Err(err).Uint("request_id", request.ID).Msg("failed to publish acceptance event")
		}
	}
}
