package ws

import (
	"context"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/rubico-playground/internal/bridge"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/logging"
	"github.com/GriffinCanCode/rubico-playground/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/rubico-playground/internal/playground"
	"github.com/GriffinCanCode/rubico-playground/internal/shared/id"
)

func (h *Handler) handleRun(ctx context.Context, client *conn, msg Message, logger *logging.Logger) {
	if err := h.validator.Validate(msg.Snippet); err != nil {
		client.sendError(err.Error())
		return
	}

	runID := id.NewRunID().String()
	logger = logger.Run(runID)

	doc := h.assembler.Assemble(msg.Snippet)
	ref := bridge.ToRenderableReference(doc)
	h.metrics.RecordDocument(len(doc))

	timer := monitoring.NewTimer(h.metrics, "stream")
	lines := 0
	result, err := playground.Stream(ctx, h.loader, ref, h.assembler.Options().OutputID, func(line string) {
		lines++
		client.send(Event{Type: TypeOutput, RunID: runID, Line: &line})
	})
	status := playground.Status(result, err)

	done := Event{Type: TypeDone, RunID: runID, Status: status}
	if result != nil {
		for _, e := range result.Errors {
			done.Errors = append(done.Errors, e.Message)
		}
	} else if err != nil {
		status = monitoring.StatusRejected
		done.Status = status
	}
	if err != nil {
		done.Message = err.Error()
	}

	scriptErrors := len(done.Errors)
	done.DurationMs = timer.Stop(status, lines, scriptErrors).Milliseconds()
	logger.Info("stream finished",
		zap.String("status", status),
		logging.Digest(ref.Digest()),
		zap.Int("lines", lines),
	)
	client.send(done)
}
