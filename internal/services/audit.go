package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/nats-io/nats.go"
)

// AuditLogger appends one JSON line per moderation event to a log file.
// The record store itself keeps no decision history; this file is the only
// trail of past approve/reject decisions.
type AuditLogger struct {
	mu   sync.Mutex
	path string
}

func NewAuditLogger(path string) *AuditLogger {
	return &AuditLogger{path: path}
}

func (a *AuditLogger) Record(event ImageEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// StartAuditConsumer subscribes a durable consumer to all image events and
// records each one in the audit log.
func StartAuditConsumer(events *EventService, audit *AuditLogger) (*nats.Subscription, error) {
	return events.Subscribe("images.*", "gallery-audit", func(msg *nats.Msg) {
		var event ImageEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("[NATS] %s: invalid payload: %v", msg.Subject, err)
			_ = msg.Nak()
			return
		}

		if err := audit.Record(event); err != nil {
			log.Printf("[Audit] failed to record %s for image %d: %v", event.Action, event.ImageID, err)
			_ = msg.Nak()
			return
		}

		_ = msg.Ack()
	})
}
