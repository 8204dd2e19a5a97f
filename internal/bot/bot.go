package bot

import (
	"context"
	"log/slog"

	"github.com/Spok95/stock-intake/internal/intake"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API часть *tgbotapi.BotAPI, которой пользуется бот.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api API
	log *slog.Logger
	svc *intake.Service
}

func New(api API, log *slog.Logger, svc *intake.Service) *Bot {
	return &Bot{api: api, log: log.With("component", "bot"), svc: svc}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, "Бот понимает только команды. Наберите /help"))
		return
	}
	b.handleCommand(ctx, msg)
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	send(b.api, b.log, msg)
}

func send(api API, log *slog.Logger, msg tgbotapi.Chattable) {
	if _, err := api.Send(msg); err != nil {
		log.Error("send failed", "err", err)
	}
}
