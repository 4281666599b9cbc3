// Package changefeed streams slider step range changes to Kafka.
package changefeed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	obs "github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

type Event struct {
	StartStep     int        `json:"start_step"`
	EndStep       int        `json:"end_step"`
	NumberOfSteps int        `json:"number_of_steps"`
	// absolute positions of the selected window
	SelectedStart int        `json:"selected_start"`
	SelectedEnd   int        `json:"selected_end"`
	Start         *time.Time `json:"start"`
	End           *time.Time `json:"end"`
	TS            time.Time  `json:"ts"`
}

// Relevant reports whether a change set moves the selected window.
func Relevant(p timeslider.Property) bool {
	return p.Has(timeslider.PropStartStep | timeslider.PropEndStep | timeslider.PropNumberOfSteps)
}

// Capture reads the step range of ts. It must run where ts is owned.
func Capture(ts *timeslider.Controller) Event {
	ev := Event{
		StartStep:     ts.StartStep(),
		EndStep:       ts.EndStep(),
		NumberOfSteps: ts.NumberOfSteps(),
	}
	sel := ts.Selection()
	ev.SelectedStart, ev.SelectedEnd = sel.Start, sel.End
	if t, ok := ts.TimeForStep(sel.Start); ok {
		t = t.UTC()
		ev.Start = &t
	}
	if t, ok := ts.TimeForStep(sel.End); ok {
		t = t.UTC()
		ev.End = &t
	}
	return ev
}

// Publisher hands events to an async producer from a bounded queue. Publish
// never blocks the caller.
type Publisher struct {
	topic   string
	key     sarama.Encoder
	events  chan Event
	prod    sarama.AsyncProducer
	log     *slog.Logger
	stopped chan struct{}
}

func NewPublisher(brokers []string, topic string, queueSize int, log *slog.Logger) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Errors = true
	cfg.Producer.Return.Successes = false
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	prod, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("changefeed: create async producer: %w", err)
	}
	p := newPublisher(prod, topic, queueSize, log)
	p.start()
	return p, nil
}

func newPublisher(prod sarama.AsyncProducer, topic string, queueSize int, log *slog.Logger) *Publisher {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if topic == "" {
		topic = "timeslider-steps"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		topic:   topic,
		key:     sarama.StringEncoder("timeslider"),
		events:  make(chan Event, queueSize),
		prod:    prod,
		log:     log.With("component", "changefeed"),
		stopped: make(chan struct{}),
	}
}

func (p *Publisher) start() {
	go func() {
		defer close(p.stopped)
		for ev := range p.events {
			b, err := json.Marshal(ev)
			if err != nil {
				obs.IncChangefeed("error")
				p.log.Error("changefeed marshal error", "err", err)
				continue
			}
			// a fixed key keeps every change on one partition, in order
			p.prod.Input() <- &sarama.ProducerMessage{
				Topic: p.topic,
				Key:   p.key,
				Value: sarama.ByteEncoder(b),
			}
		}
	}()

	go func() {
		for err := range p.prod.Errors() {
			if err != nil {
				obs.IncChangefeed("error")
				p.log.Warn("changefeed producer error", "err", err)
			}
		}
	}()
}

// Publish queues ev and reports whether it was accepted. A full queue drops it.
func (p *Publisher) Publish(ev Event) bool {
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	select {
	case p.events <- ev:
		obs.IncChangefeed("queued")
		return true
	default:
		obs.IncChangefeed("dropped")
		return false
	}
}

// Close drains the queue into the producer and closes it. Publish must not
// be called afterwards.
func (p *Publisher) Close() error {
	close(p.events)
	<-p.stopped

	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("changefeed: close producer: %w", err)
	}
	return nil
}
