package repository

import (
	"context"
	"encoding/json"
	"tgbot_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	leaderboardCacheKey = "points:leaderboard"
	leaderboardCacheTTL = 30 * time.Second
)

type PointsRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewPointsRepository(db *gorm.DB, rdb *redis.Client) *PointsRepository {
	return &PointsRepository{DB: db, Redis: rdb}
}

// Append 追加一条积分流水，流水一经写入不再变更
func (r *PointsRepository) Append(entry *model.PointsHistory) error {
	return r.DB.Create(entry).Error
}

func (r *PointsRepository) RecentByUser(telegramID int64, limit int) ([]model.PointsHistory, error) {
	var entries []model.PointsHistory
	err := r.DB.Where("telegram_id = ?", telegramID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *PointsRepository) SumByUser(telegramID int64) (int64, error) {
	var sum int64
	err := r.DB.Model(&model.PointsHistory{}).
		Where("telegram_id = ?", telegramID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

// Leaderboard 积分排行榜，Redis缓存短暂兜底，缓存失败直接回源
func (r *PointsRepository) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	if r.Redis != nil {
		cached, err := r.Redis.Get(ctx, leaderboardCacheKey).Bytes()
		if err == nil {
			var users []model.User
			if json.Unmarshal(cached, &users) == nil && len(users) >= limit {
				return users[:limit], nil
			}
		}
	}

	var users []model.User
	err := r.DB.Order("points DESC").Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	if r.Redis != nil {
		if data, err := json.Marshal(users); err == nil {
			r.Redis.Set(ctx, leaderboardCacheKey, data, leaderboardCacheTTL)
		}
	}

	return users, nil
}
