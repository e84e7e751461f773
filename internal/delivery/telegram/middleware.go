package telegram

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/service"
)

type HandlerFunc func(ctx context.Context, chatID int64) error

// withErrorHandling turns handler errors into user-facing replies.
// Handlers send their success reply before returning service.ErrNotPersisted.
func (h *Handler) withErrorHandling(fn HandlerFunc) HandlerFunc {
	return func(ctx context.Context, chatID int64) error {
		err := fn(ctx, chatID)
		switch {
		case err == nil:
		case errors.Is(err, entities.ErrValidation):
			h.logger.Debug("rejected input", zap.Int64("chat_id", chatID), zap.Error(err))
			h.sendError(chatID, formatValidationError(err))
		case errors.Is(err, service.ErrStudentNotFound):
			h.sendError(chatID, msgStudentNotFound)
		case errors.Is(err, service.ErrNotPersisted):
			h.logger.Warn("change not persisted", zap.Int64("chat_id", chatID), zap.Error(err))
			h.sendError(chatID, msgNotPersisted)
		default:
			h.logger.Error("handle error",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
			h.sendError(chatID, msgInternalError)
		}
		return nil
	}
}
