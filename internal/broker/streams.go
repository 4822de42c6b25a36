// internal/broker/streams.go

// Package broker carries events over Redis Streams. Inbound traffic is
// partitioned across numbered streams so per-article ordering survives
// horizontal consumers; outbound topics are single streams keyed by article
// id.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"conflictradar-processing/internal/common/errors"
	"conflictradar-processing/internal/common/logger"
)

// Message is one consumed stream entry.
type Message struct {
	ID      string
	Stream  string
	Key     string
	Payload []byte
}

// Handler processes one message. A nil return acknowledges the entry; an
// error leaves it pending on the consumer group.
type Handler func(ctx context.Context, msg Message) error

// PartitionFor maps a key onto a partition with FNV-1a, mirroring the usual
// keyed-topic semantics.
func PartitionFor(key string, partitions int) int {
	if partitions <= 1 {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(partitions))
}

// PartitionStream names the stream for one partition of a base topic.
func PartitionStream(base string, partition int) string {
	return fmt.Sprintf("%s.%d", base, partition)
}

// Producer publishes messages onto streams.
type Producer struct {
	client *redis.Client
	logger logger.Logger
}

func NewProducer(client *redis.Client, log logger.Logger) *Producer {
	return &Producer{client: client, logger: log}
}

// Publish appends a keyed payload to a topic stream.
func (p *Producer) Publish(ctx context.Context, stream, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.NewEventPublishFailedError(stream, key, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"key":     key,
			"payload": string(body),
		},
	}).Err()
	if err != nil {
		return errors.NewEventPublishFailedError(stream, key, err)
	}
	return nil
}

// PublishPartitioned hashes the key onto one of the base topic's partition
// streams.
func (p *Producer) PublishPartitioned(ctx context.Context, base, key string, partitions int, payload interface{}) error {
	stream := PartitionStream(base, PartitionFor(key, partitions))
	return p.Publish(ctx, stream, key, payload)
}

// Consumer reads a partitioned inbound topic through a consumer group. Each
// worker goroutine owns a fixed subset of the partition streams, so entries
// within a partition are processed in order.
type Consumer struct {
	client       *redis.Client
	group        string
	consumerName string
	base         string
	partitions   int
	workers      int
	blockTimeout time.Duration
	handler      Handler
	logger       logger.Logger

	wg sync.WaitGroup
}

func NewConsumer(
	client *redis.Client,
	group, consumerName, base string,
	partitions, workers int,
	blockTimeout time.Duration,
	handler Handler,
	log logger.Logger,
) *Consumer {
	if partitions < 1 {
		partitions = 1
	}
	if workers < 1 {
		workers = 1
	}
	if workers > partitions {
		workers = partitions
	}
	return &Consumer{
		client:       client,
		group:        group,
		consumerName: consumerName,
		base:         base,
		partitions:   partitions,
		workers:      workers,
		blockTimeout: blockTimeout,
		handler:      handler,
		logger:       log.WithFields(map[string]interface{}{"group": group, "topic": base}),
	}
}

// Start creates the consumer groups and launches the workers, partitions
// assigned round-robin. It returns once the workers are running; they stop
// when ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for p := 0; p < c.partitions; p++ {
		stream := PartitionStream(c.base, p)
		err := c.client.XGroupCreateMkStream(ctx, stream, c.group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return errors.NewBrokerUnavailableError(err)
		}
	}

	assigned := make([][]string, c.workers)
	for p := 0; p < c.partitions; p++ {
		w := p % c.workers
		assigned[w] = append(assigned[w], PartitionStream(c.base, p))
	}

	for w, streams := range assigned {
		name := fmt.Sprintf("%s-%d", c.consumerName, w)
		c.wg.Add(1)
		go c.consume(ctx, name, streams)
	}

	c.logger.Info("Consumer started", map[string]interface{}{
		"partitions": c.partitions,
		"workers":    c.workers,
	})
	return nil
}

// Wait blocks until all partition readers have exited.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) consume(ctx context.Context, consumerName string, streams []string) {
	defer c.wg.Done()

	args := make([]string, 0, len(streams)*2)
	args = append(args, streams...)
	for range streams {
		args = append(args, ">")
	}

	log := c.logger.WithFields(map[string]interface{}{"consumer": consumerName, "streams": streams})
	for {
		if ctx.Err() != nil {
			return
		}

		replies, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.group,
			Consumer: consumerName,
			Streams:  args,
			Count:    1,
			Block:    c.blockTimeout,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.WithError(err).Warn("Stream read failed, retrying", nil)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		for _, s := range replies {
			for _, entry := range s.Messages {
				c.dispatch(ctx, log, s.Stream, entry)
			}
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, log logger.Logger, stream string, entry redis.XMessage) {
	msg := Message{
		ID:     entry.ID,
		Stream: stream,
	}
	if key, ok := entry.Values["key"].(string); ok {
		msg.Key = key
	}
	if payload, ok := entry.Values["payload"].(string); ok {
		msg.Payload = []byte(payload)
	}

	if err := c.handler(ctx, msg); err != nil {
		log.WithError(err).Error("Message left pending", map[string]interface{}{
			"messageId": msg.ID,
			"key":       msg.Key,
		})
		return
	}

	if err := c.client.XAck(ctx, stream, c.group, entry.ID).Err(); err != nil {
		log.WithError(err).Warn("Acknowledgment failed", map[string]interface{}{
			"messageId": msg.ID,
		})
	}
}
