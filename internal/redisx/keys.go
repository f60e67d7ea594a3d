package redisx

import "time"

const (
	// Composition in progress: composition:{id} -> JSON billing.Composition
	KeyComposition = "composition:%s"

	// Submit guard: lock:composition:{id} -> random token
	KeyCompositionLock = "lock:composition:%s"

	// Cached menu listing: menu:all -> JSON []billing.MenuItem
	KeyMenuAll = "menu:all"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Live sales projection: hash sales:daily:{YYYY-MM-DD}
	KeySalesDaily = "sales:daily:%s"

	// Set of projected dates, for bulk clear
	KeySalesDays = "sales:days"
)

var (
	TTLComposition = 12 * time.Hour
	TTLLock        = 30 * time.Second
	TTLMenuCache   = 60 * time.Second
	TTLDedup       = 48 * time.Hour
	TTLSales       = 90 * 24 * time.Hour
)
