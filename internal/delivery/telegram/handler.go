// Package telegram is the chat front end: commands, inline confirmations and report delivery.
package telegram

import (
	"context"
	"slices"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/domain/entities"
	"github.com/aliskhannn/hafiz-bot/internal/service"
)

// BotAPI is the part of *tgbotapi.BotAPI the handler uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type StudentService interface {
	List() []entities.Student
	At(index int) (entities.Student, error)
	Get(id string) (entities.Student, error)
	CountByLevel() map[entities.Level]int
	AddStudent(ctx context.Context, in service.AddStudentInput) (entities.Student, error)
	AddDailyProgress(ctx context.Context, studentID string, in service.AddProgressInput) (entities.Student, error)
	EditStudent(ctx context.Context, studentID string, in service.EditStudentInput) (entities.Student, error)
	SetRevision(ctx context.Context, studentID string, draft entities.RevisionDraft) (entities.Student, error)
	DeleteStudent(ctx context.Context, studentID string) error
	ClearAll(ctx context.Context) error
	SeedDemo(ctx context.Context) error
}

type ReportGenerator interface {
	Generate(students []entities.Student, mode service.ReportMode) string
}

type SurahTable interface {
	service.SurahTable
	Lookup(number int) (entities.Surah, bool)
	Search(query string) []entities.Surah
}

type Handler struct {
	bot            BotAPI
	logger         *zap.Logger
	students       StudentService
	reports        ReportGenerator
	surahs         SurahTable
	allowedUserIDs []int64
	location       *time.Location
	now            func() time.Time
}

func NewHandler(
	bot BotAPI,
	logger *zap.Logger,
	students StudentService,
	reports ReportGenerator,
	surahs SurahTable,
	allowedUserIDs []int64,
	location *time.Location,
) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		bot:            bot,
		logger:         logger,
		students:       students,
		reports:        reports,
		surahs:         surahs,
		allowedUserIDs: allowedUserIDs,
		location:       location,
		now:            time.Now,
	}
}

func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		cb := update.CallbackQuery
		h.logger.Debug("callback received",
			zap.Int64("user_id", cb.From.ID),
			zap.String("data", cb.Data),
		)
		if !h.isAllowed(cb.From) {
			h.answerCallback(cb.ID, msgNotAllowed)
			return
		}
		h.handleCallback(ctx, cb)
		return
	}

	if update.Message == nil {
		h.logger.Debug("update without message and callback")
		return
	}

	h.logger.Debug("update received",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("text", update.Message.Text),
	)

	chatID := update.Message.Chat.ID

	if !h.isAllowed(update.Message.From) {
		h.logger.Warn("rejected update from unknown user", zap.Int64("chat_id", chatID))
		_ = h.send(newPlainMessage(chatID, msgNotAllowed))
		return
	}

	if !update.Message.IsCommand() {
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	args := update.Message.CommandArguments()

	var fn HandlerFunc
	switch update.Message.Command() {
	case "start", "help":
		fn = h.handleHelp()
	case "students":
		fn = h.handleStudents(args)
	case "student":
		fn = h.handleStudent(args)
	case "add":
		fn = h.handleAdd(args)
	case "progress":
		fn = h.handleProgress(args)
	case "edit":
		fn = h.handleEdit(args)
	case "revision":
		fn = h.handleRevision(args)
	case "delete":
		fn = h.handleDelete(args)
	case "clear":
		fn = h.handleClear()
	case "report":
		fn = h.handleReport(args)
	case "surah":
		fn = h.handleSurah(args)
	case "demo":
		fn = h.handleDemo()
	default:
		_ = h.send(newPlainMessage(chatID, msgUnknownCommand))
		return
	}

	_ = h.withErrorHandling(fn)(ctx, chatID)
}

func (h *Handler) isAllowed(from *tgbotapi.User) bool {
	if len(h.allowedUserIDs) == 0 {
		return true
	}
	return from != nil && slices.Contains(h.allowedUserIDs, from.ID)
}

// SendReport delivers a plain-text report, split to fit the message size limit.
func (h *Handler) SendReport(_ context.Context, chatID int64, text string) error {
	return h.sendChunks(chatID, text, false)
}

func (h *Handler) sendChunks(chatID int64, text string, html bool) error {
	for _, chunk := range splitMessage(text, maxMessageUnits, html) {
		msg := newPlainMessage(chatID, chunk)
		if html {
			msg = newHTMLMessage(chatID, chunk)
		}
		if err := h.send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) sendError(chatID int64, text string) {
	_ = h.send(newHTMLMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) error {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message",
			zap.Error(err),
		)
		return err
	}
	return nil
}

// answerCallback removes the loading indicator on the pressed button.
func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Debug("callback answer error", zap.Error(err))
	}
}
