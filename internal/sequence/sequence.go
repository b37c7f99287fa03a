// Package sequence hands out monotonic numbers for human-readable codes such as SET-0001.
package sequence

import (
	"context"

	"github.com/ikkim/lego-inventory-backend/internal/app/model"
	"github.com/ikkim/lego-inventory-backend/pkg/logger"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Generator returns the next value of a counter. Values are never handed out twice.
type Generator interface {
	Next(ctx context.Context) (int64, error)
}

// SeedFunc returns the value the counter starts from when it does not exist yet
type SeedFunc func(ctx context.Context) (int64, error)

// SeedFromLatestCode seeds a counter from the highest code already stored, so
// databases populated before the counter existed continue where they left off.
func SeedFromLatestCode(latest func(ctx context.Context) (string, error)) SeedFunc {
	return func(ctx context.Context) (int64, error) {
		code, err := latest(ctx)
		if err != nil {
			return 0, err
		}
		n, _ := model.ParseSetCode(code)
		return n, nil
	}
}

// New returns the generator for backend: "redis" uses client, anything else the database
func New(backend string, db *gorm.DB, client *redis.Client, name string, seed SeedFunc) Generator {
	if backend == "redis" {
		return NewRedisSequence(client, name, seed)
	}
	return NewDBSequence(db, name, seed)
}

// DBSequence keeps the counter in the sequences table and increments it with a
// single UPDATE inside a transaction.
type DBSequence struct {
	db   *gorm.DB
	name string
	seed SeedFunc
}

func NewDBSequence(db *gorm.DB, name string, seed SeedFunc) *DBSequence {
	return &DBSequence{db: db, name: name, seed: seed}
}

func (s *DBSequence) Next(ctx context.Context) (int64, error) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Sequence{}).Where("name = ?", s.name).Count(&existing).Error; err != nil {
		return 0, errors.Wrap(err, "check sequence")
	}

	var start int64
	if existing == 0 && s.seed != nil {
		var err error
		if start, err = s.seed(ctx); err != nil {
			return 0, errors.Wrap(err, "seed sequence")
		}
	}

	var value int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := model.Sequence{Name: s.name, Value: start}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return errors.Wrap(err, "create sequence")
		}

		if err := tx.Model(&model.Sequence{}).Where("name = ?", s.name).
			UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
			return errors.Wrap(err, "increment sequence")
		}

		var current model.Sequence
		if err := tx.Where("name = ?", s.name).First(&current).Error; err != nil {
			return errors.Wrap(err, "read sequence")
		}
		value = current.Value
		return nil
	})
	if err != nil {
		logger.Error("Failed to advance sequence", err, map[string]interface{}{
			"sequence": s.name,
		})
		return 0, err
	}

	logger.Debug("Sequence advanced", map[string]interface{}{
		"sequence": s.name,
		"value":    value,
	})
	return value, nil
}

// RedisSequence keeps the counter in a Redis key and relies on INCR for atomicity
type RedisSequence struct {
	client *redis.Client
	key    string
	seed   SeedFunc
}

func NewRedisSequence(client *redis.Client, name string, seed SeedFunc) *RedisSequence {
	return &RedisSequence{client: client, key: "sequence:" + name, seed: seed}
}

func (s *RedisSequence) Next(ctx context.Context) (int64, error) {
	exists, err := s.client.Exists(ctx, s.key).Result()
	if err != nil {
		return 0, errors.Wrap(err, "check sequence key")
	}

	if exists == 0 && s.seed != nil {
		start, err := s.seed(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "seed sequence")
		}
		// another instance may have seeded first; SETNX keeps whichever value landed
		if err := s.client.SetNX(ctx, s.key, start, 0).Err(); err != nil {
			return 0, errors.Wrap(err, "seed sequence key")
		}
	}

	value, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		logger.Error("Failed to advance sequence", err, map[string]interface{}{
			"sequence": s.key,
		})
		return 0, errors.Wrap(err, "increment sequence")
	}
	return value, nil
}
