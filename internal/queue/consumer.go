package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/davilat/bus-inventory/internal/cache"
	"github.com/davilat/bus-inventory/internal/model"
)

// StartLayoutConsumer connects to the broker and consumes layout.events.
// Each event is appended to logs/layout.log as an audit line and the
// affected layout cache entries are dropped, covering writers that
// crashed between commit and their inline invalidation. The function
// runs a reconnect loop with capped exponential backoff and never
// returns under normal operation; malformed messages are rejected
// without requeue so a poison message cannot wedge the queue.
func StartLayoutConsumer(layouts *cache.LayoutCache) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("layout-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, layouts); err != nil {
			log.Printf("layout-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, layouts *cache.LayoutCache) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("layout-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(layoutQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(layoutQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, layouts); err != nil {
			log.Printf("layout-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, layouts *cache.LayoutCache) error {
	var ev LayoutEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := appendAuditLine(ev); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	switch ev.Type {
	case EventLayoutReconciled:
		layouts.Invalidate(ctx, model.LayoutRef{Kind: model.LayoutKind(ev.LayoutKind), ID: ev.LayoutID})
	case EventTemplateSynced:
		refs := make([]model.LayoutRef, 0, len(ev.DiagramIDs))
		for _, id := range ev.DiagramIDs {
			refs = append(refs, model.DiagramRef(id))
		}
		layouts.Invalidate(ctx, refs...)
	}
	return nil
}

func appendAuditLine(ev LayoutEvent) error {
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "layout.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	var line string
	switch ev.Type {
	case EventTemplateSynced:
		line = fmt.Sprintf("[%s] Template synced | template_id=%d | owner_id=%d | diagrams=%d | failed=%d | created=%d | updated=%d | deleted=%d\n",
			ev.OccurredAt, ev.TemplateID, ev.OwnerID, len(ev.DiagramIDs), ev.Failed, ev.Created, ev.Updated, ev.Deleted)
	default:
		line = fmt.Sprintf("[%s] Layout reconciled | kind=%s | layout_id=%d | owner_id=%d | created=%d | updated=%d | deactivated=%d | total_seats=%d\n",
			ev.OccurredAt, ev.LayoutKind, ev.LayoutID, ev.OwnerID, ev.Created, ev.Updated, ev.Deactivated, ev.TotalSeats)
	}
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
