// Package rabbitmq publica los eventos de access requests en un exchange topic.
// La routing key es el tipo de evento (access_request.created, ...).
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"health-record-sharing/internal/ports/notify"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
)

const contentTypeJSON = "application/json"

// channel es lo que el publisher usa de *amqp.Channel.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	exchange string
	appID    string
}

// Dial abre conexión y canal, y declara el exchange (durable, topic).
func Dial(url, exchange, appID string) (*Publisher, error) {
	if exchange == "" {
		return nil, errors.New("rabbitmq exchange required")
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange %s: %w", exchange, err)
	}

	return &Publisher{conn: conn, ch: ch, exchange: exchange, appID: appID}, nil
}

func newWithChannel(ch channel, exchange, appID string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, appID: appID}
}

func (p *Publisher) Publish(ctx context.Context, e notify.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  contentTypeJSON,
		DeliveryMode: amqp.Persistent,
		MessageId:    e.RequestID + ":" + string(e.Type),
		Timestamp:    e.OccurredAt,
		Type:         string(e.Type),
		AppId:        p.appID,
		Body:         body,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	// *amqp.Channel no es seguro para publicar desde varias goroutines
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, string(e.Type), false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}
