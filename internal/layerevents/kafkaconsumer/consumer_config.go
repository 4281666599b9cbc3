package kafkaconsumer

import (
	"strings"
	"time"
)

type Config struct {
	Brokers             []string
	Topic               string
	GroupID             string
	SessionTimeout      time.Duration
	Heartbeat           time.Duration
	RebalanceTimeout    time.Duration
	InitialOffsetOldest bool
	// RetryBackoff is the pause after a failed Consume before rejoining.
	RetryBackoff time.Duration
}

// NewConfig fills the group timeouts with their defaults.
func NewConfig(brokers, topic, group string) Config {
	if topic == "" {
		topic = "layer-catalog"
	}
	if group == "" {
		group = "timeslider"
	}
	return Config{
		Brokers:             SplitCSV(brokers),
		Topic:               topic,
		GroupID:             group,
		SessionTimeout:      30 * time.Second,
		Heartbeat:           3 * time.Second,
		RebalanceTimeout:    30 * time.Second,
		InitialOffsetOldest: true,
		RetryBackoff:        2 * time.Second,
	}
}

func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
