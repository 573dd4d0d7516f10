package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// BaseRepository generic CRUD over one model
type BaseRepository[T any] struct {
	db *gorm.DB
}

func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

// DB returns the handle bound to ctx
func (r *BaseRepository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.DB(ctx).Create(entity).Error; err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("create record: %w: %w", ErrDuplicateKey, err)
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// FindByID returns ErrRecordNotFound when no row matches
func (r *BaseRepository[T]) FindByID(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.DB(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record (id=%v): %w", id, err)
	}
	return &entity, nil
}

// FindOne returns the first row matching query/args
func (r *BaseRepository[T]) FindOne(ctx context.Context, query any, args ...any) (*T, error) {
	var entity T
	err := r.DB(ctx).Where(query, args...).First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find record: %w", err)
	}
	return &entity, nil
}

// Save writes every column
func (r *BaseRepository[T]) Save(ctx context.Context, entity *T) error {
	if err := r.DB(ctx).Save(entity).Error; err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("save record: %w: %w", ErrDuplicateKey, err)
		}
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// UpdateColumns applies a partial update and reports ErrRecordNotFound when nothing matched
func (r *BaseRepository[T]) UpdateColumns(ctx context.Context, id any, values map[string]any) error {
	var entity T
	res := r.DB(ctx).Model(&entity).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		if IsDuplicateKey(res.Error) {
			return fmt.Errorf("update record (id=%v): %w: %w", id, ErrDuplicateKey, res.Error)
		}
		return fmt.Errorf("update record (id=%v): %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete reports ErrRecordNotFound when nothing was deleted
func (r *BaseRepository[T]) Delete(ctx context.Context, id any) error {
	var entity T
	res := r.DB(ctx).Delete(&entity, id)
	if res.Error != nil {
		return fmt.Errorf("delete record (id=%v): %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *BaseRepository[T]) Exists(ctx context.Context, query any, args ...any) (bool, error) {
	var count int64
	var entity T
	if err := r.DB(ctx).Model(&entity).Where(query, args...).Limit(1).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check record exists: %w", err)
	}
	return count > 0, nil
}

func (r *BaseRepository[T]) Count(ctx context.Context, query any, args ...any) (int64, error) {
	var count int64
	var entity T
	if err := r.DB(ctx).Model(&entity).Where(query, args...).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Transaction runs fn inside a transaction bound to ctx
func (r *BaseRepository[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB(ctx).Transaction(fn)
}
