package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/hafiz-bot/internal/app"
	"github.com/aliskhannn/hafiz-bot/internal/config"
	"github.com/aliskhannn/hafiz-bot/internal/delivery/telegram"
	"github.com/aliskhannn/hafiz-bot/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize application", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			lg.Error("failed to close storage", zap.Error(err))
		}
	}()

	loc, err := cfg.Location()
	if err != nil {
		lg.Fatal("invalid timezone", zap.Error(err))
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}
	bot.Debug = cfg.Telegram.Debug

	// Set commands.
	commands := []tgbotapi.BotCommand{
		{Command: "students", Description: "قائمة الطلاب"},
		{Command: "student", Description: "عرض طالب (الاستخدام: /student 1)"},
		{Command: "add", Description: "إضافة طالب"},
		{Command: "progress", Description: "تسجيل حفظ اليوم"},
		{Command: "revision", Description: "تحديد نطاق المراجعة"},
		{Command: "edit", Description: "تعديل بيانات طالب"},
		{Command: "delete", Description: "حذف طالب"},
		{Command: "report", Description: "تقرير الطلاب"},
		{Command: "surah", Description: "البحث عن سورة"},
		{Command: "demo", Description: "تحميل بيانات تجريبية"},
		{Command: "clear", Description: "حذف جميع الطلاب"},
		{Command: "help", Description: "المساعدة"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	lg.Info("authorized", zap.String("account", bot.Self.UserName))

	handler := telegram.NewHandler(
		bot,
		lg,
		a.Students,
		a.Reports,
		a.Surahs,
		cfg.Telegram.AllowedUserIDs,
		loc,
	)

	scheduler, err := a.NewScheduler()
	if err != nil {
		lg.Fatal("invalid report schedule", zap.Error(err))
	}
	if scheduler != nil {
		scheduler.SetNotifier(handler)
		go func() {
			if err := scheduler.Start(ctx); err != nil {
				lg.Error("report scheduler stopped", zap.Error(err))
			}
		}()
	}

	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("bot stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received")
}
