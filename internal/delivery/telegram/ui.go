package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/aliskhannn/hafiz-bot/internal/service"
)

// buildReportModeKeyboard lets the user pick the report verbosity.
func buildReportModeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 تقرير موجز", buildReportCallback(string(service.ReportConcise))),
			tgbotapi.NewInlineKeyboardButtonData("📑 تقرير مفصل", buildReportCallback(string(service.ReportDetailed))),
		),
	)
}

func buildDeleteKeyboard(studentID string) tgbotapi.InlineKeyboardMarkup {
	return buildConfirmKeyboard(
		buildDeleteCallback(confirmYes, studentID),
		buildDeleteCallback(confirmNo, studentID),
	)
}

func buildClearKeyboard() tgbotapi.InlineKeyboardMarkup {
	return buildConfirmKeyboard(buildClearCallback(confirmYes), buildClearCallback(confirmNo))
}

func buildDemoKeyboard() tgbotapi.InlineKeyboardMarkup {
	return buildConfirmKeyboard(buildDemoCallback(confirmYes), buildDemoCallback(confirmNo))
}

func buildConfirmKeyboard(yesData, noData string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ نعم", yesData),
			tgbotapi.NewInlineKeyboardButtonData("❌ إلغاء", noData),
		),
	)
}
