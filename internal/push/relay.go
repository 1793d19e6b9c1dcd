package push

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// originAttribute carries the publishing instance ID so instances can skip
// their own messages on receive.
const originAttribute = "origin"

// publishTimeout bounds how long a relay publish may take before the event
// is abandoned for remote delivery. Local fan-out has already happened.
const publishTimeout = 5 * time.Second

// Relay mirrors push events across API instances through a Pub/Sub topic,
// so clients connected to any instance see every event.
type Relay struct {
	client     *pubsub.Client
	publisher  *pubsub.Publisher
	subscriber *pubsub.Subscriber
	instanceID string
	logger     zerolog.Logger

	// deliver hands remotely published events to the local hub. Set by
	// NewHub.
	deliver func(data []byte)
}

// RelayConfig holds configuration for the push relay.
type RelayConfig struct {
	ProjectID        string
	TopicName        string
	SubscriptionName string
	Logger           zerolog.Logger
}

// NewRelay creates a new Pub/Sub backed relay.
func NewRelay(ctx context.Context, cfg RelayConfig) (*Relay, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 50

	return &Relay{
		client:     client,
		publisher:  client.Publisher(cfg.TopicName),
		subscriber: subscriber,
		instanceID: uuid.New().String(),
		logger:     cfg.Logger.With().Str("component", "push_relay").Logger(),
	}, nil
}

// Publish mirrors an event to the other instances. Fire and forget; a
// failed publish only costs remote clients this one event.
func (r *Relay) Publish(data []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		result := r.publisher.Publish(ctx, &pubsub.Message{
			Data:       data,
			Attributes: map[string]string{originAttribute: r.instanceID},
		})
		if _, err := result.Get(ctx); err != nil {
			r.logger.Warn().Err(err).Msg("relay publish failed")
		}
	}()
}

// Start receives relayed events until ctx is cancelled, delivering events
// published by other instances to the local hub.
func (r *Relay) Start(ctx context.Context) error {
	r.logger.Info().Str("instance_id", r.instanceID).Msg("starting push relay")

	return r.subscriber.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
		if msg.Attributes[originAttribute] == r.instanceID {
			msg.Ack()
			return
		}
		if r.deliver != nil {
			r.deliver(msg.Data)
		}
		msg.Ack()
	})
}

// Close closes the underlying Pub/Sub client.
func (r *Relay) Close() error {
	r.publisher.Stop()
	return r.client.Close()
}
