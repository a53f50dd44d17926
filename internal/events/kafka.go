package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const topicPrefix = "chroma."

// NewKafkaWriter creates a writer with minimal required configuration.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
}

// MirrorToKafka forwards every hub event to a topic named after its table
// (chroma.orders, chroma.products, ...) so downstream warehouse tooling can
// consume changes without holding an HTTP stream open. Runs until ctx is
// cancelled. Delivery failures are logged and skipped; the in-process
// stream stays authoritative.
func MirrorToKafka(ctx context.Context, hub *Hub, brokers []string) {
	ch, cancel := hub.Subscribe()
	defer cancel()

	writers := make(map[string]*kafka.Writer)
	var mu sync.Mutex

	writerFor := func(table string) *kafka.Writer {
		mu.Lock()
		defer mu.Unlock()
		w, ok := writers[table]
		if !ok {
			w = NewKafkaWriter(brokers, topicPrefix+table)
			writers[table] = w
		}
		return w
	}

	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, w := range writers {
			_ = w.Close()
		}
	}()

	log.Printf("Mirroring change events to kafka brokers %v", brokers)

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			value, err := json.Marshal(evt)
			if err != nil {
				log.Printf("Failed to marshal event for kafka: %v", err)
				continue
			}
			msg := kafka.Message{
				// same row id keys to the same partition
				Key:   []byte(strconv.FormatUint(uint64(evt.RowID), 10)),
				Value: value,
				Time:  time.Now(),
			}
			if err := writerFor(evt.Table).WriteMessages(ctx, msg); err != nil {
				log.Printf("Failed to write %s event to kafka: %v", evt.Table, err)
			}
		}
	}
}
