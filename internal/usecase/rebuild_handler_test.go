package usecase

import (
	"context"
	"errors"
	"testing"

	pkgkafka "FinPanel/pkg/kafka"
	"FinPanel/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebuildHandler(t *testing.T) {
	store := newMemStore()
	h := NewRebuildHandler("panels.rebuild", newTestPipeline(t, fredSource(), store), metrics.Nop{})
	ctx := context.Background()

	assert.Equal(t, "panels.rebuild", h.Topic())

	require.NoError(t, h.Handle(ctx, []byte(`{"panel":"test","end":"2024-01-02"}`)))
	b, err := store.Latest(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, b.Panel.Len())

	tests := []struct {
		name string
		msg  string
	}{
		{"bad json", `{"panel":`},
		{"no panel", `{"end":"2024-01-02"}`},
		{"unknown panel", `{"panel":"missing"}`},
		{"bad end", `{"panel":"test","end":"02/31/2024x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Handle(ctx, []byte(tt.msg))
			assert.ErrorIs(t, err, pkgkafka.ErrPermanent)
		})
	}
}

func TestRebuildHandler_TransientFetchIsRetryable(t *testing.T) {
	src := fredSource()
	src.err = errors.New("timeout")
	h := NewRebuildHandler("panels.rebuild", newTestPipeline(t, src, newMemStore()), metrics.Nop{})

	err := h.Handle(context.Background(), []byte(`{"panel":"test"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, pkgkafka.ErrPermanent)
	assert.ErrorIs(t, err, ErrFetch)
}
