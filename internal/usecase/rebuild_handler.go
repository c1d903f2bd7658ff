package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"FinPanel/internal/domain/models"
	domrepo "FinPanel/internal/domain/repository"
	"FinPanel/internal/services/panel"
	pkgkafka "FinPanel/pkg/kafka"
)

// RebuildHandler consumes rebuild requests and runs the pipeline.
type RebuildHandler struct {
	topic    string
	pipeline *PanelPipeline
	metrics  domrepo.Metrics
}

func NewRebuildHandler(topic string, pipeline *PanelPipeline, metrics domrepo.Metrics) *RebuildHandler {
	return &RebuildHandler{topic: topic, pipeline: pipeline, metrics: metrics}
}

func (h *RebuildHandler) Topic() string { return h.topic }

// Handle runs one rebuild. Requests that can never succeed (bad JSON,
// unknown panel, invalid rules or dates) are marked permanent so the
// consumer dead-letters them instead of retrying.
func (h *RebuildHandler) Handle(ctx context.Context, b []byte) error {
	var req models.RebuildRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: decode rebuild request: %v", pkgkafka.ErrPermanent, err)
	}
	if req.Panel == "" {
		h.metrics.RecordError("consumer_invalid")
		return fmt.Errorf("%w: rebuild request without panel", pkgkafka.ErrPermanent)
	}

	_, err := h.pipeline.Rebuild(ctx, req.Panel, req.End)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domrepo.ErrPanelNotFound),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, panel.ErrInput):
		return fmt.Errorf("%w: %w", pkgkafka.ErrPermanent, err)
	default:
		return err
	}
}

var _ pkgkafka.MessageHandler = (*RebuildHandler)(nil)
