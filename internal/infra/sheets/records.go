package sheets

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/Spok95/stock-intake/internal/domain/inventory"
	gsheets "google.golang.org/api/sheets/v4"
)

// RecordSink журнал записей на листе Google-таблицы.
// Лист создаётся с заголовком при первом обращении, если его нет.
type RecordSink struct {
	svc           *gsheets.Service
	spreadsheetID string
	worksheet     string

	mu    sync.Mutex
	ready bool
}

func NewRecordSink(svc *gsheets.Service, spreadsheetID, worksheet string) *RecordSink {
	return &RecordSink{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}
}

func (s *RecordSink) Append(ctx context.Context, records []inventory.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.ensureWorksheet(ctx); err != nil {
		return err
	}

	values := make([][]any, 0, len(records))
	for _, r := range records {
		values = append(values, inventory.EncodeRow(r))
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.worksheet+"!A1", &gsheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: append rows: %w", inventory.ErrSinkUnavailable, err)
	}
	return nil
}

func (s *RecordSink) ReadAll(ctx context.Context) (inventory.Table, error) {
	if err := s.ensureWorksheet(ctx); err != nil {
		return nil, err
	}

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, s.worksheet).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", inventory.ErrSinkUnavailable, err)
	}

	out := inventory.Table{}
	for i, row := range resp.Values {
		cells := cellStrings(row)
		if i == 0 && len(cells) > 0 && cells[0] == inventory.Columns[0] {
			continue
		}
		if r, ok := inventory.DecodeRow(cells); ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *RecordSink) ensureWorksheet(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: open spreadsheet: %w", inventory.ErrSinkUnavailable, err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.worksheet {
			s.ready = true
			return nil
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: s.worksheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: add worksheet: %w", inventory.ErrSinkUnavailable, err)
	}

	header := make([]any, len(inventory.Columns))
	for i, c := range inventory.Columns {
		header[i] = c
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, s.worksheet+"!A1", &gsheets.ValueRange{Values: [][]any{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: write header: %w", inventory.ErrSinkUnavailable, err)
	}
	s.ready = true
	return nil
}

func cellStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch x := v.(type) {
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
