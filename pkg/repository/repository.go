package repository

import (
	"context"
	"errors"

	"retailops-dashboard/pkg/db/option"

	"gorm.io/gorm"
)

// Repository is a thin generic store over gorm. FindOne returns (nil, nil)
// when no row matches so callers can map absence to a not-found error.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id string, values any) error
	Delete(ctx context.Context, query *T) error
	Count(ctx context.Context, query *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var out []*T
	tx := option.Apply(s.db.WithContext(ctx).Where(query), opts...)
	if err := tx.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var out T
	tx := option.Apply(s.db.WithContext(ctx).Where(query), opts...)
	if err := tx.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (s *store[T]) Create(ctx context.Context, entity *T) error {
	return s.db.WithContext(ctx).Create(entity).Error
}

func (s *store[T]) Update(ctx context.Context, id string, values any) error {
	var model T
	return s.db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(values).Error
}

func (s *store[T]) Delete(ctx context.Context, query *T) error {
	return s.db.WithContext(ctx).Delete(query).Error
}

func (s *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var model T
	var count int64
	err := s.db.WithContext(ctx).Model(&model).Where(query).Count(&count).Error
	return count, err
}
