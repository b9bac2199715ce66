package creators

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/maatchaa/maatchaa-backend/internal/domain"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type CreatorVideoRepo interface {
	GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.CreatorVideo, error)
	GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.CreatorVideo, error)
	// CreateIfAbsent inserts the row unless one with the same video_id exists.
	// created is false when the row was already there.
	CreateIfAbsent(ctx context.Context, tx *gorm.DB, v *types.CreatorVideo) (created bool, err error)
}

type creatorVideoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCreatorVideoRepo(db *gorm.DB, baseLog *logger.Logger) CreatorVideoRepo {
	repoLog := baseLog.With("repo", "CreatorVideoRepo")
	return &creatorVideoRepo{db: db, log: repoLog}
}

func (r *creatorVideoRepo) tx(tx *gorm.DB) *gorm.DB {
	if tx == nil {
		return r.db
	}
	return tx
}

func (r *creatorVideoRepo) GetByVideoID(ctx context.Context, tx *gorm.DB, videoID string) (*types.CreatorVideo, error) {
	if videoID == "" {
		return nil, nil
	}
	var v types.CreatorVideo
	err := r.tx(tx).WithContext(ctx).Where("video_id = ?", videoID).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *creatorVideoRepo) GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []string) ([]*types.CreatorVideo, error) {
	var results []*types.CreatorVideo
	if len(videoIDs) == 0 {
		return results, nil
	}
	if err := r.tx(tx).WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *creatorVideoRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, v *types.CreatorVideo) (bool, error) {
	if v == nil || v.VideoID == "" {
		return false, nil
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	res := r.tx(tx).WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "video_id"}}, DoNothing: true}).
		Create(v)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
