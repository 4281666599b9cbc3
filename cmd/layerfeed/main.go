// Command layerfeed produces a scripted sequence of layer catalog events and
// prints the slider snapshots the server publishes in response.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/layerevents"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot/redisstore"
)

func getenv(key, def string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return def
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func ptr[T any](v T) *T { return &v }

// script adds two time-aware layers, reloads one and drops the other.
func script() []layerevents.Event {
	monthly := model.NewTimeExtent(day(2020, 1, 1), day(2020, 6, 1))
	weekly := model.NewTimeExtent(day(2020, 3, 1), day(2020, 12, 1))
	extended := model.NewTimeExtent(day(2020, 1, 1), day(2021, 1, 1))
	return []layerevents.Event{
		{Op: layerevents.OpAdd, Layer: "precipitation", Seq: 1, Extent: &monthly, Interval: ptr(model.NewTimeValue(1, model.Months))},
		{Op: layerevents.OpAdd, Layer: "wildfires", Seq: 1, Extent: &weekly, Interval: ptr(model.NewTimeValue(7, model.Days)), LoadStatus: ptr(model.Loading)},
		{Op: layerevents.OpLoadStatus, Layer: "wildfires", Seq: 2, LoadStatus: ptr(model.Loaded)},
		{Op: layerevents.OpUpdate, Layer: "precipitation", Seq: 2, Extent: &extended},
		{Op: layerevents.OpRemove, Layer: "wildfires", Seq: 3},
	}
}

func produce(brokers []string, topic string, events []layerevents.Event, pause time.Duration) error {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.Version = sarama.V2_5_0_0
	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return fmt.Errorf("producer create: %w", err)
	}
	defer func() { _ = prod.Close() }()

	for _, ev := range events {
		ev.Version = 1
		ev.TS = time.Now().UTC()
		b, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", ev.Op, ev.Layer, err)
		}
		// keyed by layer so per-layer order holds across partitions
		part, off, err := prod.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Key:   sarama.StringEncoder(ev.Layer),
			Value: sarama.ByteEncoder(b),
		})
		if err != nil {
			return fmt.Errorf("send %s %s: %w", ev.Op, ev.Layer, err)
		}
		fmt.Printf("sent %-11s %-14s partition=%d offset=%d\n", ev.Op, ev.Layer, part, off)
		time.Sleep(pause)
	}
	return nil
}

func watch(ctx context.Context, addr, channel string) error {
	store, err := redisstore.New(ctx, addr, redisstore.WithDialTimeout(2*time.Second))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sub := store.Subscribe(ctx, channel)
	defer func() { _ = sub.Close() }()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var s snapshot.Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &s); err != nil {
				fmt.Println("undecodable snapshot:", err)
				continue
			}
			fmt.Printf("snapshot steps=%d range=%d..%d interval=%s extent=%s\n",
				s.NumberOfSteps, s.StartStep, s.EndStep, s.TimeInterval, s.FullTimeExtent)
		}
	}
}

func main() {
	watchFor := flag.Duration("watch", 5*time.Second, "how long to print snapshots after the last event (0 disables)")
	pause := flag.Duration("pause", 500*time.Millisecond, "delay between events")
	flag.Parse()

	redisAddr := getenv("REDIS_ADDR", "localhost:6379")
	channel := getenv("SNAPSHOT_CHANNEL", "timeslider:changes")
	brokers := strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ",")
	topic := getenv("KAFKA_TOPIC", "layer-catalog")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	if *watchFor > 0 {
		go func() { done <- watch(ctx, redisAddr, channel) }()
	} else {
		close(done)
	}

	if err := produce(brokers, topic, script(), *pause); err != nil {
		fmt.Println("Kafka error:", err)
		os.Exit(1)
	}

	if *watchFor > 0 {
		time.AfterFunc(*watchFor, cancel)
	}
	if err := <-done; err != nil {
		fmt.Println("Redis error:", err)
		os.Exit(1)
	}
}
