package option

import "gorm.io/gorm"

// QueryOption mutates a gorm query before it is executed.
type QueryOption func(*gorm.DB) *gorm.DB

func Apply(tx *gorm.DB, opts ...QueryOption) *gorm.DB {
	for _, opt := range opts {
		tx = opt(tx)
	}
	return tx
}

func WithOrder(order string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB { return tx.Order(order) }
}

func WithPreload(association string) QueryOption {
	return func(tx *gorm.DB) *gorm.DB { return tx.Preload(association) }
}

func WithLimit(limit int) QueryOption {
	return func(tx *gorm.DB) *gorm.DB { return tx.Limit(limit) }
}

// WithScope applies an arbitrary condition, e.g. range filters.
func WithScope(scope func(*gorm.DB) *gorm.DB) QueryOption {
	return func(tx *gorm.DB) *gorm.DB { return scope(tx) }
}
