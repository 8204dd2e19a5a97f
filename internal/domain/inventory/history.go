package inventory

import "time"

// FindLatestPrior возвращает последнюю запись по (store, item): максимальная дата,
// при равных датах — добавленная позже. Ничего не суммирует и не усредняет.
func FindLatestPrior(t Table, storeID, itemID string) *Record {
	return findLatest(t, func(r *Record) bool {
		return r.StoreID == storeID && r.ItemID == itemID
	})
}

// FindLatestPriorBefore как FindLatestPrior, но только среди записей строго раньше before.
func FindLatestPriorBefore(t Table, storeID, itemID string, before time.Time) *Record {
	day := Day(before)
	return findLatest(t, func(r *Record) bool {
		return r.StoreID == storeID && r.ItemID == itemID && r.RecordDate.Before(day)
	})
}

func findLatest(t Table, match func(*Record) bool) *Record {
	best := -1
	for i := range t {
		if !match(&t[i]) {
			continue
		}
		if best < 0 || !t[i].RecordDate.Before(t[best].RecordDate) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	r := t[best]
	return &r
}
