package emitters

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"donation-widget/internal/interfaces"
	"donation-widget/internal/logger"
	"donation-widget/internal/models"

	"github.com/segmentio/kafka-go"
)

var _ interfaces.EventEmitter = (*KafkaEmitter)(nil)

// MessageWriter is the part of kafka.Writer the emitter uses
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEmitter implements EventEmitter using Kafka
type KafkaEmitter struct {
	writer MessageWriter
	mu     sync.Mutex
}

// NewKafkaEmitter creates a new KafkaEmitter
func NewKafkaEmitter(brokerAddress, topic string, batchSize int, batchTimeout time.Duration) *KafkaEmitter {
	return NewKafkaEmitterWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokerAddress),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    batchSize,
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
	})
}

func NewKafkaEmitterWithWriter(writer MessageWriter) *KafkaEmitter {
	return &KafkaEmitter{writer: writer}
}

// EmitEvent publishes one transfer keyed by project so a project's
// transfers stay ordered within a partition.
func (k *KafkaEmitter) EmitEvent(ctx context.Context, event models.TransferEvent) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer == nil {
		return fmt.Errorf("kafka emitter is closed")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProjectID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "chainId", Value: []byte(fmt.Sprintf("%d", event.Chain))},
			{Key: "txHash", Value: []byte(event.TxHash)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	logger.GetLogger().Info().
		Str("chain", event.Chain.String()).
		Str("projectId", event.ProjectID).
		Str("txHash", event.TxHash).
		Msg("Successfully emitted event to Kafka")
	return nil
}

func (k *KafkaEmitter) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.writer != nil {
		err := k.writer.Close()
		k.writer = nil
		return err
	}
	return nil
}
