package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/corebank/ledger-service/internal/domain"
)

// TransactionPostedEvent is the wire form of a posted-transaction event.
type TransactionPostedEvent struct {
	TransactionID string  `json:"transaction_id"`
	AccountID     string  `json:"account_id"`
	Type          string  `json:"type"`
	Amount        string  `json:"amount"`
	Description   string  `json:"description"`
	UserID        *string `json:"user_id,omitempty"`
	PostedAt      string  `json:"posted_at"`
}

// RabbitMQPublisher implements domain.EventPublisher on a RabbitMQ topic
// exchange.
type RabbitMQPublisher struct {
	conn       *amqp.Connection
	channel    *amqp.Channel
	exchange   string
	routingKey string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the topic exchange.
func NewRabbitMQPublisher(url, exchange, routingKey string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &RabbitMQPublisher{
		conn:       conn,
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

// PublishTransactionPosted publishes a posted transaction as a persistent
// JSON message.
func (p *RabbitMQPublisher) PublishTransactionPosted(ctx context.Context, transaction *domain.Transaction) error {
	event := TransactionPostedEvent{
		TransactionID: transaction.ID.String(),
		AccountID:     transaction.AccountID.String(),
		Type:          string(transaction.Type),
		Amount:        domain.FormatAmount(transaction.Amount),
		Description:   transaction.Description,
		PostedAt:      transaction.CreatedAt.UTC().Format(time.RFC3339),
	}
	if transaction.UserID != nil {
		id := transaction.UserID.String()
		event.UserID = &id
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return fmt.Errorf("failed to close channel: %w", err)
	}
	if err := p.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}
