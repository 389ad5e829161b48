package sinks

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

type pubsubSink struct {
	name   string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newPubSubSink honours PUBSUB_EMULATOR_HOST through the client library.
func newPubSubSink(ctx context.Context, cfg Config, log Logger) (Sink, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("sink %q missing pubsub configuration", cfg.Name)
	}
	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &pubsubSink{
		name:   cfg.Name,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    ensureLogger(log),
	}, nil
}

func (p *pubsubSink) Name() string { return p.name }
func (p *pubsubSink) Kind() string { return KindPubSub }

func (p *pubsubSink) Deliver(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	res := p.topic.Publish(ctx, &pubsub.Message{
		Data:       body,
		Attributes: evt.attributes(),
	})
	id, err := res.Get(ctx)
	if err != nil {
		p.log.ErrorObj("pubsub sink publish failed", "sink_pubsub_error", map[string]any{
			"sink":  p.name,
			"id":    evt.ID,
			"error": err.Error(),
		})
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	p.log.DebugObj("pubsub sink delivered event", "sink_pubsub_delivery", map[string]any{
		"sink":       p.name,
		"id":         evt.ID,
		"message_id": id,
	})
	return nil
}

// Close flushes pending messages and releases the client.
func (p *pubsubSink) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
