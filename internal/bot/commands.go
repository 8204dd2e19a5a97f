package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/intake"
	"github.com/Spok95/stock-intake/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `Команды:
/stores — список магазинов
/vendors — список поставщиков
/orders <магазин> [ГГГГ-ММ-ДД] — заявки за день (по умолчанию сегодня)
/period <магазин> <с> <по> — сводка расхода за период
/export <магазин> [ГГГГ-ММ-ДД] — заявки за день файлом xlsx
/help — помощь`

// reply ответ на команду: текст или документ.
type reply struct {
	text     string
	fileName string
	file     []byte
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	r := b.answer(ctx, msg.Command(), strings.Fields(msg.CommandArguments()))
	if r.file != nil {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: r.fileName, Bytes: r.file})
		doc.Caption = r.text
		b.send(doc)
		return
	}
	b.send(tgbotapi.NewMessage(chatID, r.text))
}

func (b *Bot) answer(ctx context.Context, cmd string, args []string) reply {
	switch cmd {
	case "start":
		return reply{text: "Привет! Я показываю заявки и сводки по остаткам.\n\n" + helpText}
	case "help":
		return reply{text: helpText}

	case "stores":
		cat := b.svc.Catalog()
		var sb strings.Builder
		sb.WriteString("Магазины:\n")
		for _, s := range cat.Stores {
			fmt.Fprintf(&sb, "— %s (%s)\n", cat.StoreName(s.ID), s.ID)
		}
		return reply{text: strings.TrimRight(sb.String(), "\n")}

	case "vendors":
		return reply{text: "Поставщики:\n— " + strings.Join(b.svc.Catalog().Vendors(), "\n— ")}

	case "orders", "export":
		if len(args) < 1 || len(args) > 2 {
			return reply{text: fmt.Sprintf("Формат: /%s <магазин> [ГГГГ-ММ-ДД]", cmd)}
		}
		var day time.Time
		if len(args) == 2 {
			d, err := inventory.ParseDay(args[1])
			if err != nil {
				return reply{text: "Дата в формате ГГГГ-ММ-ДД, например 2024-01-05"}
			}
			day = d
		}
		store := args[0]
		lines, day, err := b.svc.Orders(ctx, store, day)
		if err != nil {
			return b.errorReply(cmd, err)
		}
		storeName := b.svc.Catalog().StoreName(store)
		// пустую выгрузку не шлём, хватит текста
		if cmd == "orders" || len(lines) == 0 {
			return reply{text: report.OrdersText(storeName, day, lines)}
		}
		data, err := report.OrdersWorkbook(storeName, day, lines)
		if err != nil {
			return b.errorReply(cmd, err)
		}
		return reply{
			text:     fmt.Sprintf("Заявки: %s, %s", storeName, day.Format(inventory.DateLayout)),
			fileName: report.FileName(report.KindOrders, store, day),
			file:     data,
		}

	case "period":
		if len(args) != 3 {
			return reply{text: "Формат: /period <магазин> <ГГГГ-ММ-ДД> <ГГГГ-ММ-ДД>"}
		}
		from, err1 := inventory.ParseDay(args[1])
		to, err2 := inventory.ParseDay(args[2])
		if err1 != nil || err2 != nil {
			return reply{text: "Дата в формате ГГГГ-ММ-ДД, например 2024-01-05"}
		}
		rows, err := b.svc.Period(ctx, args[0], from, to)
		if err != nil {
			return b.errorReply(cmd, err)
		}
		return reply{text: report.PeriodText(b.svc.Catalog().StoreName(args[0]), from, to, rows)}

	default:
		return reply{text: "Не знаю такую команду. Наберите /help"}
	}
}

func (b *Bot) errorReply(cmd string, err error) reply {
	switch {
	case errors.Is(err, intake.ErrUnknownStore):
		return reply{text: "Нет такого магазина. Список: /stores"}
	case errors.Is(err, inventory.ErrSinkUnavailable):
		b.log.Error("command failed", "cmd", cmd, "err", err)
		return reply{text: "Журнал остатков сейчас недоступен, попробуйте позже."}
	}
	b.log.Error("command failed", "cmd", cmd, "err", err)
	return reply{text: "Ошибка: не удалось выполнить команду"}
}
