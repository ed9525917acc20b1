package events

import (
	"context"
	"errors"
	"testing"

	"donation-widget/internal/models"

	"github.com/stretchr/testify/assert"
)

type recordingEmitter struct {
	got []models.TransferEvent
	err error
}

func (r *recordingEmitter) EmitEvent(_ context.Context, event models.TransferEvent) error {
	r.got = append(r.got, event)
	return r.err
}

func TestLogEmitter_Forwards(t *testing.T) {
	inner := &recordingEmitter{}
	emitter := &LogEmitter{WrappedEmitter: inner}

	event := models.TransferEvent{ProjectID: "p1", Chain: models.Scroll, TxHash: "0x1", ExplorerURL: "https://scrollscan.com/tx/0x1"}
	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Equal(t, []models.TransferEvent{event}, inner.got)
}

func TestLogEmitter_PropagatesError(t *testing.T) {
	inner := &recordingEmitter{err: errors.New("boom")}
	emitter := &LogEmitter{WrappedEmitter: inner}
	assert.EqualError(t, emitter.EmitEvent(context.Background(), models.TransferEvent{}), "boom")
}

func TestLogEmitter_Standalone(t *testing.T) {
	emitter := &LogEmitter{}
	assert.NoError(t, emitter.EmitEvent(context.Background(), models.TransferEvent{}))
}
