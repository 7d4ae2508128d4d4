package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	streamName = "image-events"

	SubjectImageUploaded = "images.uploaded"
	SubjectImageApproved = "images.approved"
	SubjectImageRejected = "images.rejected"
	SubjectImageDeleted  = "images.deleted"
)

// ImageEvent is the payload published for every lifecycle transition.
type ImageEvent struct {
	ImageID    int       `json:"image_id"`
	Action     string    `json:"action"` // uploaded | approved | rejected | deleted
	Actor      string    `json:"actor,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Filename   string    `json:"filename,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventService publishes image lifecycle events via NATS JetStream.
type EventService struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// ConnectEvents connects to NATS and ensures the image-events stream exists.
func ConnectEvents(url string) (*EventService, error) {
	opts := []nats.Option{
		nats.Name("gallery-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[NATS] disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[NATS] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Println("[NATS] connection closed")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	svc := &EventService{nc: nc, js: js}
	if err := svc.ensureStream(); err != nil {
		log.Printf("[NATS] warning: failed to ensure stream: %v", err)
		// Not fatal, publishing will fail loudly if the stream is missing
	}

	log.Println("[NATS] connected and JetStream initialized")
	return svc, nil
}

// ensureStream creates the image-events stream if it doesn't exist (idempotent).
func (e *EventService) ensureStream() error {
	if _, err := e.js.StreamInfo(streamName); err == nil {
		return nil
	}

	_, err := e.js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"images.*"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	})
	return err
}

// Publish sends an event via JetStream with an idempotency message id.
func (e *EventService) Publish(subject string, event ImageEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if _, err := e.js.Publish(subject, data, nats.MsgId(uuid.New().String())); err != nil {
		log.Printf("[NATS] publish failed subject=%s err=%v", subject, err)
		return err
	}
	return nil
}

// Subscribe creates a durable, manual-ack consumer for the subject.
func (e *EventService) Subscribe(subject, durableName string, handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := e.js.Subscribe(subject, handler, nats.Durable(durableName), nats.ManualAck())
	if err != nil {
		return nil, err
	}
	log.Printf("[NATS] subscribed subject=%s durable=%s", subject, durableName)
	return sub, nil
}

// Close drains the connection.
func (e *EventService) Close() {
	if e.nc != nil {
		e.nc.Close()
	}
}
