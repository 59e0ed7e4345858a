// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/reelfeed/internal/config"
)

const consumerGroup = "reelfeed"

// Bus owns the publisher and subscriber for one transport.
type Bus struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	Transport  string

	server *EmbeddedServer
}

// NewBus opens the transport selected by cfg.
func NewBus(cfg *config.EventsConfig, wmLogger watermill.LoggerAdapter, logger zerolog.Logger) (*Bus, error) {
	if wmLogger == nil {
		wmLogger = watermill.NopLogger{}
	}

	if !cfg.NATSEnabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, wmLogger)
		return &Bus{Publisher: ch, Subscriber: ch, Transport: "gochannel"}, nil
	}

	bus := &Bus{Transport: "nats"}
	url := cfg.NATSURL
	if cfg.NATSEmbedded {
		srv, err := NewEmbeddedServer(ServerConfig{
			Host:     "127.0.0.1",
			Port:     cfg.NATSPort,
			StoreDir: cfg.StoreDir,
		})
		if err != nil {
			return nil, err
		}
		bus.server = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	pub, err := newNATSPublisher(url, wmLogger)
	if err != nil {
		bus.shutdownServer()
		return nil, err
	}
	sub, err := newNATSSubscriber(url, cfg.CloseTimeout, wmLogger)
	if err != nil {
		_ = pub.Close()
		bus.shutdownServer()
		return nil, err
	}
	bus.Publisher, bus.Subscriber = pub, sub
	return bus, nil
}

// Close closes the publisher, the subscriber and any embedded server.
func (b *Bus) Close() error {
	var errs []error
	if b.Publisher != nil {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// gochannel uses one value for both sides.
	if b.Subscriber != nil && b.Transport != "gochannel" {
		if err := b.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	b.shutdownServer()
	return errors.Join(errs...)
}

func (b *Bus) shutdownServer() {
	if b.server != nil {
		b.server.Shutdown()
		b.server = nil
	}
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATSPublisher(url string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

func newNATSSubscriber(url string, closeTimeout time.Duration, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: consumerGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     closeTimeout,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: true,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverAll(),
				natsgo.AckExplicit(),
			},
			DurablePrefix: consumerGroup,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}
