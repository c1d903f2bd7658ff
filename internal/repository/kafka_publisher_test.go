package repository

import (
	"context"
	"testing"
	"time"

	"FinPanel/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (r *recordingProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	r.topic, r.key, r.value = topic, key, value
	return nil
}

func (r *recordingProducer) Close() error {
	r.closed = true
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	prod := &recordingProducer{}
	pub := NewKafkaPublisher(prod, "panels.built")

	ev := models.PanelBuilt{BuildID: "b1", Panel: "fred", BuiltAt: time.Unix(0, 0).UTC(), Rows: 3}
	require.NoError(t, pub.PublishPanelBuilt(context.Background(), ev))

	assert.Equal(t, "panels.built", prod.topic)
	assert.Equal(t, []byte("fred"), prod.key)
	assert.Equal(t, ev, prod.value)

	require.NoError(t, pub.Close())
	assert.True(t, prod.closed)
}
