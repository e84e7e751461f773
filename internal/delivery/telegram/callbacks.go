package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/service"
)

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer h.answerCallback(cb.ID, "")

	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	messageID := cb.Message.MessageID

	data := decodeCallback(cb.Data)

	var err error
	switch data.Action {
	case actionReport:
		err = h.handleReportCallback(chatID, messageID, data)
	case actionDelete:
		err = h.handleDeleteCallback(ctx, chatID, messageID, data)
	case actionClear:
		err = h.handleConfirmCallback(chatID, messageID, data, msgCleared, func() error {
			return h.students.ClearAll(ctx)
		})
	case actionDemo:
		err = h.handleConfirmCallback(chatID, messageID, data, msgDemoLoaded, func() error {
			return h.students.SeedDemo(ctx)
		})
	default:
		h.logger.Debug("unknown callback", zap.String("data", cb.Data))
		return
	}

	_ = h.withErrorHandling(func(context.Context, int64) error { return err })(ctx, chatID)
}

func (h *Handler) handleReportCallback(chatID int64, messageID int, data callbackData) error {
	mode, err := service.ParseReportMode(data.param(0))
	if err != nil {
		return err
	}

	// Drop the chooser keyboard so the report is not requested twice.
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	_ = h.send(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty))

	return h.sendReport(chatID, mode)
}

func (h *Handler) handleDeleteCallback(ctx context.Context, chatID int64, messageID int, data callbackData) error {
	if data.param(0) != confirmYes {
		return h.send(newEdit(chatID, messageID, msgCancelled))
	}

	err := h.students.DeleteStudent(ctx, data.param(1))
	if err != nil && !errors.Is(err, service.ErrNotPersisted) {
		return err
	}

	if sendErr := h.send(newEdit(chatID, messageID, msgStudentDeleted)); sendErr != nil {
		return sendErr
	}
	return err
}

// handleConfirmCallback runs action on "yes" and replaces the question with done or a cancel note.
func (h *Handler) handleConfirmCallback(chatID int64, messageID int, data callbackData, done string, action func() error) error {
	if data.param(0) != confirmYes {
		return h.send(newEdit(chatID, messageID, msgCancelled))
	}

	err := action()
	if err != nil && !errors.Is(err, service.ErrNotPersisted) {
		return err
	}

	if sendErr := h.send(newEdit(chatID, messageID, done)); sendErr != nil {
		return sendErr
	}
	return err
}
