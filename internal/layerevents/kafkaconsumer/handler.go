package kafkaconsumer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
)

type messageProcessor func(context.Context, *sarama.ConsumerMessage) error

// groupHandler drives one consumer group generation of the layer catalog
// topic. Catalog events for one layer share a partition key, so ordering per
// layer holds as long as each claim is processed sequentially.
type groupHandler struct {
	process messageProcessor
	logger  *slog.Logger
}

func (h *groupHandler) log() *slog.Logger {
	if h.logger == nil {
		return slog.Default()
	}
	return h.logger
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	h.log().Info("layer catalog partitions assigned",
		"member", sess.MemberID(), "generation", sess.GenerationID(), "claims", sess.Claims())
	return nil
}

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	h.log().Info("layer catalog partitions released", "generation", sess.GenerationID())
	return nil
}

// ConsumeClaim applies a partition's events in offset order. An offset is
// marked only once its event went through the dispatch loop, so a stop
// mid-claim redelivers from the first unapplied event.
func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	l := h.log().With("topic", claim.Topic(), "partition", claim.Partition())
	l.Debug("layer catalog claim started",
		"initial_offset", claim.InitialOffset(), "high_water_mark", claim.HighWaterMarkOffset())

	var applied int
	for {
		select {
		case <-ctx.Done():
			l.Debug("layer catalog claim interrupted", "applied", applied)
			return fmt.Errorf("layer catalog claim: %w", ctx.Err())
		case msg, ok := <-claim.Messages():
			if !ok {
				l.Debug("layer catalog claim drained", "applied", applied)
				return nil
			}
			if err := h.process(ctx, msg); err != nil {
				return fmt.Errorf("layer event at %s/%d@%d: %w",
					msg.Topic, msg.Partition, msg.Offset, err)
			}
			sess.MarkMessage(msg, "")
			applied++
		}
	}
}
