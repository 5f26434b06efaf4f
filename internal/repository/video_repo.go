package repository

import (
	"context"
	"time"

	"vidgate/internal/domain"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

type videoModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Title        string    `gorm:"column:title"`
	Description  string    `gorm:"column:description"`
	SourceID     string    `gorm:"column:source_id"`
	ThumbnailURL string    `gorm:"column:thumbnail_url"`
	Active       bool      `gorm:"column:active"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (videoModel) TableName() string { return "videos" }

func toDomainVideo(m videoModel) *domain.Video {
	return &domain.Video{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		SourceID:     m.SourceID,
		ThumbnailURL: m.ThumbnailURL,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}

func toVideoModel(v *domain.Video) videoModel {
	return videoModel{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		SourceID:     v.SourceID,
		ThumbnailURL: v.ThumbnailURL,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
	}
}

func (r *VideoRepository) Create(ctx context.Context, v *domain.Video) error {
	m := toVideoModel(v)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*v = *toDomainVideo(m)
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	var m videoModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainVideo(m), nil
}

// FindActivePaginated returns one page of active videos plus the total
// count of active rows for pagination metadata.
func (r *VideoRepository) FindActivePaginated(ctx context.Context, offset, limit int) ([]domain.Video, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&videoModel{}).
		Where("active = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []videoModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}

	videos := make([]domain.Video, 0, len(models))
	for _, m := range models {
		videos = append(videos, *toDomainVideo(m))
	}
	return videos, total, nil
}

func (r *VideoRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&videoModel{}).Count(&count)
	return count, tx.Error
}
