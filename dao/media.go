package dao

import (
	"errors"

	"gorm.io/gorm"

	"media-engine-backend/model"
)

func CreateMedia(rec *model.MediaRecord) error {
	return DB.Create(rec).Error
}

func GetMediaByID(id uint) (*model.MediaRecord, error) {
	var rec model.MediaRecord
	if err := DB.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func GetMediaByEmail(email string) ([]model.MediaRecord, error) {
	var recs []model.MediaRecord
	if err := DB.Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func GetMediaByIDs(ids []uint) ([]model.MediaRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var recs []model.MediaRecord
	if err := DB.Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

func SaveMedia(rec *model.MediaRecord) error {
	return DB.Save(rec).Error
}

func SoftDeleteMedia(id uint, email string) error {
	return DB.Where("id = ? AND user_email = ?", id, email).
		Delete(&model.MediaRecord{}).Error
}

func SetMediaFavorite(id uint, email string, favorite bool) error {
	return DB.Model(&model.MediaRecord{}).
		Where("id = ? AND user_email = ?", id, email).
		Update("favorite", favorite).Error
}

// ResetMediaForReprocess re-queues a failed record. Only failed
// records may be reset; the returned count tells the caller whether
// anything happened.
func ResetMediaForReprocess(id uint, email string) (bool, error) {
	res := DB.Model(&model.MediaRecord{}).
		Where("id = ? AND user_email = ? AND processing_status = ?", id, email, model.StatusFailed).
		Updates(map[string]any{
			"processing_status": model.StatusPending,
			"processing_error":  "",
		})
	return res.RowsAffected > 0, res.Error
}

// KeywordSearchMedia is the fast text side of hybrid search: a
// substring match over description and file name, completed records
// only.
func KeywordSearchMedia(query string, limit int) ([]model.MediaRecord, error) {
	pattern := "%" + query + "%"
	var recs []model.MediaRecord
	if err := DB.Where("processing_status = ?", model.StatusCompleted).
		Where("description LIKE ? OR file_name LIKE ?", pattern, pattern).
		Limit(limit).
		Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}
