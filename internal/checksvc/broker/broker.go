package broker

import (
	"encoding/json"
	"fmt"

	"github.com/avvvet/cardcheck-services/internal/checksvc/models"
	"github.com/avvvet/cardcheck-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const BatchTopic = "cardcheck.batch"

// Conn is the part of *nats.Conn the broker uses.
type Conn interface {
	Publish(subj string, data []byte) error
}

var _ Conn = (*nats.Conn)(nil)

type Broker struct {
	Conn       Conn
	InstanceId string
}

func NewBroker(nc Conn, instanceId string) *Broker {
	return &Broker{Conn: nc, InstanceId: instanceId}
}

func (b *Broker) PublishBatchCompleted(run models.BatchRun) error {
	data, err := json.Marshal(comm.BatchCompleted{
		JobID:       run.ID,
		Total:       run.Total,
		Valid:       run.Valid,
		Invalid:     run.Invalid,
		DurationMs:  run.Duration().Milliseconds(),
		CompletedAt: run.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal batch completed: %w", err)
	}

	payload, err := json.Marshal(&comm.Message{
		Type:       "batch-completed",
		Data:       data,
		InstanceId: b.InstanceId,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return b.Publish(BatchTopic, payload)
}

func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}
