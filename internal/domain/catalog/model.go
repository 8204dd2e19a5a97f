package catalog

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidCatalog — справочник отсутствует или битый; дальше работать нельзя.
var ErrInvalidCatalog = errors.New("invalid catalog")

type Store struct {
	ID   string
	Name string
}

// Item строка справочника товаров одного поставщика.
type Item struct {
	ItemID      string
	DisplayName string
	Unit        string
	UnitPrice   decimal.Decimal
	VendorID    string
}

// Catalog загружается целиком при старте и дальше не меняется.
type Catalog struct {
	Stores []Store
	Items  []Item

	byID map[string]int
}

func New(stores []Store, items []Item) *Catalog {
	c := &Catalog{Stores: stores, Items: items, byID: make(map[string]int, len(items))}
	for i, it := range items {
		c.byID[it.ItemID] = i
	}
	return c
}

func (c *Catalog) HasStore(id string) bool {
	for _, s := range c.Stores {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (c *Catalog) StoreName(id string) string {
	for _, s := range c.Stores {
		if s.ID == id {
			if s.Name != "" {
				return s.Name
			}
			return s.ID
		}
	}
	return id
}

// Vendors уникальные поставщики по алфавиту.
func (c *Catalog) Vendors() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, it := range c.Items {
		if _, ok := seen[it.VendorID]; ok {
			continue
		}
		seen[it.VendorID] = struct{}{}
		out = append(out, it.VendorID)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) HasVendor(vendorID string) bool {
	for _, it := range c.Items {
		if it.VendorID == vendorID {
			return true
		}
	}
	return false
}

// ItemsByVendor товары поставщика в порядке справочника.
func (c *Catalog) ItemsByVendor(vendorID string) []Item {
	var out []Item
	for _, it := range c.Items {
		if it.VendorID == vendorID {
			out = append(out, it)
		}
	}
	return out
}

func (c *Catalog) Item(itemID string) (Item, bool) {
	i, ok := c.byID[itemID]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}
