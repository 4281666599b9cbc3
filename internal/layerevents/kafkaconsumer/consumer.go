// Package kafkaconsumer feeds layer catalog events from a Kafka topic into
// the layer list through the dispatch loop.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	obs "github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	"github.com/mohammed-shakir/geotime-toolkit/internal/layerevents"
	mylog "github.com/mohammed-shakir/geotime-toolkit/internal/logger"
)

type Applier interface {
	Apply(layerevents.Event) (layerevents.Result, error)
}

// Dispatcher runs fn on the goroutine that owns the layer list.
type Dispatcher interface {
	Do(ctx context.Context, fn func()) error
}

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	apply  Applier
	loop   Dispatcher
	zlog   *zerolog.Logger
}

// New builds a consumer. zl receives per-message error lines; nil discards them.
func New(cfg Config, logger *slog.Logger, zl *zerolog.Logger, apply Applier, loop Dispatcher) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		cfg:    cfg,
		logger: logger.With("component", "kafka_consumer"),
		apply:  apply,
		loop:   loop,
		zlog:   mylog.FromContext(mylog.WithComponent(context.Background(), "kafka_consumer"), zl),
	}
}

func (c *Consumer) saramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true
	return cfg
}

// Start consumes until ctx ends.
func (c *Consumer) Start(ctx context.Context) error {
	if c.apply == nil || c.loop == nil {
		return errors.New("kafkaconsumer: missing dependencies (applier/loop)")
	}

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, c.saramaConfig())
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne, logger: c.logger}

	c.logger.Info("layer event consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	backoff := c.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("layer event consumer shutting down")
			return nil
		default:
		}
		if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
			c.logger.Error("consumer error", "err", err)
			c.zlog.Error().Err(err).
				Strs("brokers", c.cfg.Brokers).
				Str("topic", c.cfg.Topic).
				Msg("kafka consumer error")
			select {
			case <-ctx.Done():
			case <-time.After(backoff):
			}
		}
	}
}

// ProcessOne decodes and applies one message. Malformed, invalid and
// unappliable events are logged and skipped so they do not block the
// partition; only a stopped dispatch loop or a cancelled context is returned,
// which leaves the offset unmarked.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev layerevents.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		obs.IncKafkaConsumerError("decode")
		c.logMessageError(ctx, msg, "decode", err)
		return nil
	}
	ctx = mylog.WithTrigger(ctx, ev.Trigger())

	var (
		res      layerevents.Result
		applyErr error
	)
	if err := c.loop.Do(ctx, func() { res, applyErr = c.apply.Apply(ev) }); err != nil {
		obs.IncKafkaConsumerError("dispatch")
		return fmt.Errorf("dispatch layer event: %w", err)
	}
	if applyErr != nil {
		kind := "apply"
		if errors.Is(applyErr, layerevents.ErrInvalid) {
			kind = "invalid"
		}
		obs.IncKafkaConsumerError(kind)
		c.logMessageError(ctx, msg, kind, applyErr)
		return nil
	}

	c.logger.Debug("layer event consumed",
		"layer", ev.Layer, "op", ev.Op, "seq", ev.Seq, "result", res.String(),
		"partition", msg.Partition, "offset", msg.Offset)
	return nil
}

func (c *Consumer) logMessageError(ctx context.Context, msg *sarama.ConsumerMessage, kind string, err error) {
	mylog.FromContext(ctx, c.zlog).Error().Err(err).
		Str("kind", kind).
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Msg("kafka error")
}
