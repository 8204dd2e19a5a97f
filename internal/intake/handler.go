package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	"github.com/Spok95/stock-intake/internal/report"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	FormatJSON = "json"
	FormatText = "text"
	FormatXLSX = "xlsx"
)

// Handler HTTP-обвязка над Service. archiver может быть nil — тогда xlsx не архивируются.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	log      *slog.Logger
	archiver *report.Archiver
}

func NewHandler(svc *Service, log *slog.Logger, archiver *report.Archiver) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
		log:      log.With("component", "intake_http"),
		archiver: archiver,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog/stores", h.listStores)
	mux.HandleFunc("GET /api/catalog/vendors", h.listVendors)
	mux.HandleFunc("GET /api/catalog/vendors/{vendor}/items", h.listItems)
	mux.HandleFunc("GET /api/stores/{store}/vendors/{vendor}/form", h.form)
	mux.HandleFunc("POST /api/stores/{store}/vendors/{vendor}/records", h.saveRecords)
	mux.HandleFunc("GET /api/stores/{store}/orders", h.orders)
	mux.HandleFunc("GET /api/stores/{store}/period", h.period)
}

type storeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type itemJSON struct {
	ItemID      string          `json:"item_id"`
	DisplayName string          `json:"display_name"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VendorID    string          `json:"vendor_id"`
}

type formLineJSON struct {
	itemJSON
	PriorDate     *string `json:"prior_date"`
	PriorStock    float64 `json:"prior_stock"`
	PriorPurchase float64 `json:"prior_purchase"`
	CarryForward  float64 `json:"carry_forward"`
}

type recordJSON struct {
	Date            string          `json:"date"`
	StoreID         string          `json:"store_id"`
	VendorID        string          `json:"vendor_id"`
	ItemID          string          `json:"item_id"`
	DisplayName     string          `json:"display_name"`
	Unit            string          `json:"unit"`
	PriorStock      float64         `json:"prior_stock"`
	PriorPurchase   float64         `json:"prior_purchase"`
	CurrentStock    float64         `json:"current_stock"`
	CurrentPurchase float64         `json:"current_purchase"`
	Usage           float64         `json:"usage"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

type aggregateJSON struct {
	VendorID         string          `json:"vendor_id"`
	ItemID           string          `json:"item_id"`
	DisplayName      string          `json:"display_name"`
	Unit             string          `json:"unit"`
	TotalUsage       float64         `json:"total_usage"`
	TotalPurchase    float64         `json:"total_purchase"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	ClosingStock     float64         `json:"closing_stock"`
	ClosingUnitPrice decimal.Decimal `json:"closing_unit_price"`
	ClosingValue     decimal.Decimal `json:"closing_value"`
	ClosingDate      string          `json:"closing_date"`
}

type orderLineJSON struct {
	VendorID    string          `json:"vendor_id"`
	ItemID      string          `json:"item_id"`
	DisplayName string          `json:"display_name"`
	Unit        string          `json:"unit"`
	Quantity    float64         `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type saveRequest struct {
	Date    string         `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Entries []entryRequest `json:"entries" validate:"required,min=1,dive"`
}

type entryRequest struct {
	ItemID   string  `json:"item_id" validate:"required"`
	Stock    float64 `json:"stock" validate:"gte=0"`
	Purchase float64 `json:"purchase" validate:"gte=0"`
}

type saveResponse struct {
	BatchID  string       `json:"batch_id"`
	StoreID  string       `json:"store_id"`
	VendorID string       `json:"vendor_id"`
	Date     string       `json:"date"`
	Saved    int          `json:"saved"`
	Skipped  int          `json:"skipped"`
	Records  []recordJSON `json:"records"`
}

func toRecordJSON(r inventory.Record) recordJSON {
	return recordJSON{
		Date:            r.RecordDate.Format(inventory.DateLayout),
		StoreID:         r.StoreID,
		VendorID:        r.VendorID,
		ItemID:          r.ItemID,
		DisplayName:     r.DisplayName,
		Unit:            r.Unit,
		PriorStock:      r.PriorStock,
		PriorPurchase:   r.PriorPurchase,
		CurrentStock:    r.CurrentStock,
		CurrentPurchase: r.CurrentPurchase,
		Usage:           r.Usage,
		UnitPrice:       r.UnitPrice,
		TotalAmount:     r.TotalAmount,
	}
}

func (h *Handler) listStores(w http.ResponseWriter, _ *http.Request) {
	stores := h.svc.Catalog().Stores
	out := make([]storeJSON, 0, len(stores))
	for _, s := range stores {
		out = append(out, storeJSON{ID: s.ID, Name: h.svc.Catalog().StoreName(s.ID)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listVendors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Catalog().Vendors())
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	vendor := r.PathValue("vendor")
	if !h.svc.Catalog().HasVendor(vendor) {
		h.writeError(w, r, fmt.Errorf("%w: %q", ErrUnknownVendor, vendor))
		return
	}
	items := h.svc.Catalog().ItemsByVendor(vendor)
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, itemJSON{
			ItemID: it.ItemID, DisplayName: it.DisplayName, Unit: it.Unit,
			UnitPrice: it.UnitPrice, VendorID: it.VendorID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	day, err := queryDay(r, "date", false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	sel := Selection{StoreID: r.PathValue("store"), VendorID: r.PathValue("vendor"), Date: day}
	lines, err := h.svc.Form(r.Context(), sel)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]formLineJSON, 0, len(lines))
	for _, l := range lines {
		fl := formLineJSON{
			itemJSON: itemJSON{
				ItemID: l.Item.ItemID, DisplayName: l.Item.DisplayName, Unit: l.Item.Unit,
				UnitPrice: l.Item.UnitPrice, VendorID: l.Item.VendorID,
			},
			CarryForward: l.CarryForward,
		}
		if l.Prior != nil {
			d := l.Prior.RecordDate.Format(inventory.DateLayout)
			fl.PriorDate = &d
			fl.PriorStock = l.Prior.CurrentStock
			fl.PriorPurchase = l.Prior.CurrentPurchase
		}
		out = append(out, fl)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) saveRecords(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, &ValidationError{Field: "body", Message: err.Error()})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sel := Selection{StoreID: r.PathValue("store"), VendorID: r.PathValue("vendor")}
	if req.Date != "" {
		// формат уже проверен валидатором
		sel.Date, _ = inventory.ParseDay(req.Date)
	}
	entries := make([]Entry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, Entry{ItemID: e.ItemID, Stock: e.Stock, Purchase: e.Purchase})
	}

	res, err := h.svc.Save(r.Context(), sel, entries)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := saveResponse{
		BatchID:  res.BatchID,
		StoreID:  res.Selection.StoreID,
		VendorID: res.Selection.VendorID,
		Date:     res.Selection.Date.Format(inventory.DateLayout),
		Saved:    len(res.Saved),
		Skipped:  res.Skipped,
		Records:  make([]recordJSON, 0, len(res.Saved)),
	}
	for _, rec := range res.Saved {
		resp.Records = append(resp.Records, toRecordJSON(rec))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) orders(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	day, err := queryDay(r, "date", false)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	store := r.PathValue("store")
	lines, day, err := h.svc.Orders(r.Context(), store, day)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch format {
	case FormatText:
		writeText(w, report.OrdersText(h.svc.Catalog().StoreName(store), day, lines))
	case FormatXLSX:
		data, err := report.OrdersWorkbook(h.svc.Catalog().StoreName(store), day, lines)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeWorkbook(w, r, store, report.FileName(report.KindOrders, store, day), data)
	default:
		out := make([]orderLineJSON, 0, len(lines))
		for _, l := range lines {
			out = append(out, orderLineJSON(l))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) period(w http.ResponseWriter, r *http.Request) {
	format, err := queryFormat(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	from, err := queryDay(r, "from", true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	to, err := queryDay(r, "to", true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	store := r.PathValue("store")
	rows, err := h.svc.Period(r.Context(), store, from, to)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	switch format {
	case FormatText:
		writeText(w, report.PeriodText(h.svc.Catalog().StoreName(store), from, to, rows))
	case FormatXLSX:
		data, err := report.PeriodWorkbook(h.svc.Catalog().StoreName(store), from, to, rows)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeWorkbook(w, r, store, report.FileName(report.KindPeriod, store, to), data)
	default:
		out := make([]aggregateJSON, 0, len(rows))
		for _, a := range rows {
			out = append(out, aggregateJSON{
				VendorID: a.VendorID, ItemID: a.ItemID, DisplayName: a.DisplayName, Unit: a.Unit,
				TotalUsage: a.TotalUsage, TotalPurchase: a.TotalPurchase, TotalAmount: a.TotalAmount,
				ClosingStock: a.ClosingStock, ClosingUnitPrice: a.ClosingUnitPrice,
				ClosingValue: a.ClosingValue, ClosingDate: a.ClosingDate.Format(inventory.DateLayout),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, r *http.Request, store, name string, data []byte) {
	if h.archiver != nil {
		key, err := h.archiver.Archive(r.Context(), store, name, data)
		if err != nil {
			// отчёт всё равно отдаём, архив вторичен
			h.log.Warn("archive report failed", "file", name, "err", err)
		} else {
			w.Header().Set("X-Archive-Key", key)
		}
	}
	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func queryFormat(r *http.Request) (string, error) {
	f := strings.ToLower(r.URL.Query().Get("format"))
	switch f {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText, FormatXLSX:
		return f, nil
	}
	return "", &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q", f)}
}

func queryDay(r *http.Request, name string, required bool) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if required {
			return time.Time{}, &ValidationError{Field: name, Message: "required"}
		}
		return time.Time{}, nil
	}
	d, err := inventory.ParseDay(raw)
	if err != nil {
		return time.Time{}, &ValidationError{Field: name, Message: "expected YYYY-MM-DD"}
	}
	return d, nil
}

func statusFor(err error) int {
	var ve *ValidationError
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &ve), errors.As(err, &vErrs):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnknownStore), errors.Is(err, ErrUnknownVendor):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrSinkUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		parts := make([]string, 0, len(vErrs))
		for _, fe := range vErrs {
			parts = append(parts, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
		msg = strings.Join(parts, "; ")
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
