package intake

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/catalog"
	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/infra/metrics"
	"github.com/google/uuid"
)

var (
	ErrUnknownStore  = errors.New("unknown store")
	ErrUnknownVendor = errors.New("unknown vendor")
)

// ValidationError ошибка во входных данных сотрудника.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// Selection выбор сотрудника: магазин, поставщик, дата. Передаётся в каждый вызов явно.
type Selection struct {
	StoreID  string
	VendorID string
	Date     time.Time
}

// Entry ввод по одному товару.
type Entry struct {
	ItemID   string
	Stock    float64
	Purchase float64
}

// FormLine строка формы: товар, его прошлая запись и перенос (остаток + закупка).
type FormLine struct {
	Item         catalog.Item
	Prior        *inventory.Record
	CarryForward float64
}

type SaveResult struct {
	BatchID   string
	Selection Selection
	Saved     []inventory.Record
	Skipped   int
}

// Notifier получает сводку после успешного сохранения (например, Telegram).
type Notifier interface {
	NotifySaved(ctx context.Context, res SaveResult)
}

type Service struct {
	catalog  *catalog.Catalog
	sink     inventory.Sink
	log      *slog.Logger
	metrics  *metrics.Metrics
	notifier Notifier
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLocation часовой пояс магазинов: в нём определяется «сегодня».
func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func NewService(cat *catalog.Catalog, sink inventory.Sink, log *slog.Logger, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		catalog: cat,
		sink:    sink,
		log:     log.With("component", "intake"),
		metrics: m,
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Today текущая дата в часовом поясе магазинов.
func (s *Service) Today() time.Time {
	return inventory.Day(s.now().In(s.loc))
}

func (s *Service) resolve(sel Selection) (Selection, error) {
	if !s.catalog.HasStore(sel.StoreID) {
		return sel, fmt.Errorf("%w: %q", ErrUnknownStore, sel.StoreID)
	}
	if sel.VendorID != "" && !s.catalog.HasVendor(sel.VendorID) {
		return sel, fmt.Errorf("%w: %q", ErrUnknownVendor, sel.VendorID)
	}
	if sel.Date.IsZero() {
		sel.Date = s.Today()
	}
	sel.Date = inventory.Day(sel.Date)
	return sel, nil
}

func (s *Service) readAll(ctx context.Context) (inventory.Table, error) {
	started := time.Now()
	t, err := s.sink.ReadAll(ctx)
	s.metrics.ObserveSink("read", started, err)
	return t, err
}

// Form строки ввода для поставщика с подставленными прошлыми значениями.
func (s *Service) Form(ctx context.Context, sel Selection) ([]FormLine, error) {
	sel, err := s.resolve(sel)
	if err != nil {
		return nil, err
	}
	if sel.VendorID == "" {
		return nil, &ValidationError{Field: "vendor_id", Message: "required"}
	}

	table, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	items := s.catalog.ItemsByVendor(sel.VendorID)
	out := make([]FormLine, 0, len(items))
	for _, it := range items {
		prior := inventory.FindLatestPriorBefore(table, sel.StoreID, it.ItemID, sel.Date)
		line := FormLine{Item: it, Prior: prior}
		if prior != nil {
			line.CarryForward = prior.CurrentStock + prior.CurrentPurchase
		}
		out = append(out, line)
	}
	return out, nil
}

func validateEntries(cat *catalog.Catalog, vendorID string, entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		field := fmt.Sprintf("entries[%d]", i)
		it, ok := cat.Item(e.ItemID)
		if !ok {
			return &ValidationError{Field: field + ".item_id", Message: fmt.Sprintf("unknown item %q", e.ItemID)}
		}
		if it.VendorID != vendorID {
			return &ValidationError{Field: field + ".item_id", Message: fmt.Sprintf("item %q belongs to vendor %q", e.ItemID, it.VendorID)}
		}
		if _, dup := seen[e.ItemID]; dup {
			return &ValidationError{Field: field + ".item_id", Message: fmt.Sprintf("duplicate item %q", e.ItemID)}
		}
		seen[e.ItemID] = struct{}{}
		if !validQty(e.Stock) {
			return &ValidationError{Field: field + ".stock", Message: "must be a non-negative number"}
		}
		if !validQty(e.Purchase) {
			return &ValidationError{Field: field + ".purchase", Message: "must be a non-negative number"}
		}
	}
	return nil
}

func validQty(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Save сверяет ввод с историей и дописывает непустые строки одной пачкой.
// Ошибка хранилища возвращается как есть (ErrSinkUnavailable), повторов нет.
func (s *Service) Save(ctx context.Context, sel Selection, entries []Entry) (SaveResult, error) {
	sel, err := s.resolve(sel)
	if err != nil {
		return SaveResult{}, err
	}
	if sel.VendorID == "" {
		return SaveResult{}, &ValidationError{Field: "vendor_id", Message: "required"}
	}
	if err := validateEntries(s.catalog, sel.VendorID, entries); err != nil {
		return SaveResult{}, err
	}

	res := SaveResult{BatchID: uuid.NewString(), Selection: sel}
	log := s.log.With("batch_id", res.BatchID, "store", sel.StoreID, "vendor", sel.VendorID,
		"date", sel.Date.Format(inventory.DateLayout))

	table, err := s.readAll(ctx)
	if err != nil {
		log.Error("read history failed", "err", err)
		return SaveResult{}, err
	}

	for _, e := range entries {
		it, _ := s.catalog.Item(e.ItemID)
		prior := inventory.FindLatestPriorBefore(table, sel.StoreID, it.ItemID, sel.Date)
		rec := inventory.Reconcile(it, prior, e.Stock, e.Purchase, sel.StoreID, sel.VendorID, sel.Date)
		if !inventory.ShouldPersist(rec) {
			res.Skipped++
			continue
		}
		res.Saved = append(res.Saved, rec)
	}

	s.metrics.RecordsSkipped.WithLabelValues(sel.StoreID).Add(float64(res.Skipped))
	if len(res.Saved) == 0 {
		log.Info("nothing to save", "skipped", res.Skipped)
		return res, nil
	}

	started := time.Now()
	err = s.sink.Append(ctx, res.Saved)
	s.metrics.ObserveSink("append", started, err)
	if err != nil {
		log.Error("append failed", "err", err, "records", len(res.Saved))
		return SaveResult{}, err
	}
	s.metrics.RecordsSaved.WithLabelValues(sel.StoreID).Add(float64(len(res.Saved)))
	log.Info("records saved", "saved", len(res.Saved), "skipped", res.Skipped)

	if s.notifier != nil {
		s.notifier.NotifySaved(ctx, res)
	}
	return res, nil
}

// Orders заявки магазина за день (zero day — сегодня).
func (s *Service) Orders(ctx context.Context, storeID string, day time.Time) ([]inventory.PurchaseOrderLine, time.Time, error) {
	sel, err := s.resolve(Selection{StoreID: storeID, Date: day})
	if err != nil {
		return nil, time.Time{}, err
	}
	table, err := s.readAll(ctx)
	if err != nil {
		return nil, time.Time{}, err
	}
	return inventory.PurchaseOrders(table, sel.StoreID, sel.Date), sel.Date, nil
}

// Period сводка за [from, to]. Порядок дат не проверяется: перевёрнутый диапазон — пустой ответ.
func (s *Service) Period(ctx context.Context, storeID string, from, to time.Time) ([]inventory.AggregateRow, error) {
	if !s.catalog.HasStore(storeID) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, storeID)
	}
	table, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return inventory.AggregatePeriod(table, storeID, from, to), nil
}
