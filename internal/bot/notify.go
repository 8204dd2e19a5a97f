package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/intake"
	"github.com/Spok95/stock-intake/internal/report"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ intake.Notifier = (*Notifier)(nil)

// Notifier шлёт сводку каждого сохранения в админ-чат (intake.Notifier).
type Notifier struct {
	api       API
	log       *slog.Logger
	cat       *catalog.Catalog
	adminChat int64
}

func NewNotifier(api API, log *slog.Logger, cat *catalog.Catalog, adminChatID int64) *Notifier {
	return &Notifier{api: api, log: log.With("component", "bot_notifier"), cat: cat, adminChat: adminChatID}
}

// NotifySaved без admin_chat_id молчит.
func (n *Notifier) NotifySaved(_ context.Context, res intake.SaveResult) {
	if n.adminChat == 0 {
		return
	}
	send(n.api, n.log, tgbotapi.NewMessage(n.adminChat, savedSummary(n.cat.StoreName(res.Selection.StoreID), res)))
}

func savedSummary(storeName string, res intake.SaveResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Остатки сохранены: %s / %s, %s\n",
		storeName, res.Selection.VendorID, res.Selection.Date.Format(inventory.DateLayout))
	fmt.Fprintf(&sb, "Записей: %d, пропущено пустых: %d\n", len(res.Saved), res.Skipped)
	for _, r := range res.Saved {
		fmt.Fprintf(&sb, "— %s: остаток %s, закупка %s %s, расход %s, сумма %s\n",
			r.DisplayName, report.Qty(r.CurrentStock), report.Qty(r.CurrentPurchase), r.Unit,
			report.Qty(r.Usage), r.TotalAmount.StringFixed(1))
	}
	return strings.TrimRight(sb.String(), "\n")
}
