package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetStores = "stores"
	SheetItems  = "items"
)

var (
	storeColumns = []string{"store_id"}
	itemColumns  = []string{"item_id", "display_name", "unit", "unit_price", "vendor_id"}
)

// LoadWorkbook читает справочник из xlsx: лист stores (store_id[, store_name])
// и лист items (item_id, display_name, unit, unit_price, vendor_id).
func LoadWorkbook(path string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %v", ErrInvalidCatalog, path, err)
	}
	defer func() { _ = f.Close() }()

	storeRows, err := f.GetRows(SheetStores)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrInvalidCatalog, SheetStores, err)
	}
	itemRows, err := f.GetRows(SheetItems)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrInvalidCatalog, SheetItems, err)
	}
	return Build(storeRows, itemRows)
}

// LoadCSV читает справочник из двух UTF-8 CSV-файлов с теми же колонками, что и в xlsx.
func LoadCSV(storesPath, itemsPath string) (*Catalog, error) {
	storeRows, err := readCSV(storesPath)
	if err != nil {
		return nil, err
	}
	itemRows, err := readCSV(itemsPath)
	if err != nil {
		return nil, err
	}
	return Build(storeRows, itemRows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidCatalog, path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// Build собирает справочник из табличных строк (первая строка — заголовок).
func Build(storeRows, itemRows [][]string) (*Catalog, error) {
	stores, err := parseStores(storeRows)
	if err != nil {
		return nil, err
	}
	items, err := parseItems(itemRows)
	if err != nil {
		return nil, err
	}
	return New(stores, items), nil
}

func parseStores(rows [][]string) ([]Store, error) {
	idx, err := headerIndex(SheetStores, rows, storeColumns)
	if err != nil {
		return nil, err
	}
	nameCol, hasName := lookupColumn(rows[0], "store_name")

	seen := map[string]struct{}{}
	var out []Store
	for _, row := range rows[1:] {
		id := cell(row, idx["store_id"])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s := Store{ID: id}
		if hasName {
			s.Name = cell(row, nameCol)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no stores", ErrInvalidCatalog)
	}
	return out, nil
}

func parseItems(rows [][]string) ([]Item, error) {
	idx, err := headerIndex(SheetItems, rows, itemColumns)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var out []Item
	for i, row := range rows[1:] {
		id := cell(row, idx["item_id"])
		if id == "" {
			continue
		}
		line := i + 2
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: items row %d: duplicate item_id %q", ErrInvalidCatalog, line, id)
		}
		seen[id] = struct{}{}

		vendor := cell(row, idx["vendor_id"])
		if vendor == "" {
			return nil, fmt.Errorf("%w: items row %d: empty vendor_id", ErrInvalidCatalog, line)
		}

		price := decimal.Zero
		if raw := cell(row, idx["unit_price"]); raw != "" {
			p, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: items row %d: bad unit_price %q", ErrInvalidCatalog, line, raw)
			}
			if p.IsNegative() {
				return nil, fmt.Errorf("%w: items row %d: negative unit_price", ErrInvalidCatalog, line)
			}
			price = p
		}

		name := cell(row, idx["display_name"])
		if name == "" {
			name = id
		}
		out = append(out, Item{
			ItemID:      id,
			DisplayName: name,
			Unit:        cell(row, idx["unit"]),
			UnitPrice:   price,
			VendorID:    vendor,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidCatalog)
	}
	return out, nil
}

func headerIndex(sheet string, rows [][]string, required []string) (map[string]int, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s: empty", ErrInvalidCatalog, sheet)
	}
	idx := make(map[string]int, len(required))
	for _, col := range required {
		i, ok := lookupColumn(rows[0], col)
		if !ok {
			return nil, fmt.Errorf("%w: %s: missing column %q", ErrInvalidCatalog, sheet, col)
		}
		idx[col] = i
	}
	return idx, nil
}

func lookupColumn(header []string, name string) (int, bool) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i, true
		}
	}
	return 0, false
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
