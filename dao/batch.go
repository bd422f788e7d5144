package dao

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"media-engine-backend/model"
)

func CreateBatch(batch *model.BatchUpload) error {
	return DB.Create(batch).Error
}

func GetBatchByID(id uint) (*model.BatchUpload, error) {
	var batch model.BatchUpload
	if err := DB.First(&batch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// RecordBatchOutcome moves one file from pending to successful or
// failed and re-derives the batch status, under a row lock so
// concurrent workers finishing files of the same batch cannot lose
// updates.
func RecordBatchOutcome(id uint, success bool) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var batch model.BatchUpload
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&batch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if batch.Pending <= 0 {
			return nil
		}
		batch.Pending--
		if success {
			batch.Successful++
		} else {
			batch.Failed++
		}
		batch.Status = batch.DeriveStatus()

		return tx.Save(&batch).Error
	})
}

// ReplaceBatchOutcome flips a previously recorded outcome when a
// redelivered file lands on the other terminal state, so one file
// never consumes more than one pending slot.
func ReplaceBatchOutcome(id uint, success bool) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var batch model.BatchUpload
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&batch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if success {
			if batch.Failed <= 0 {
				return nil
			}
			batch.Failed--
			batch.Successful++
		} else {
			if batch.Successful <= 0 {
				return nil
			}
			batch.Successful--
			batch.Failed++
		}
		batch.Status = batch.DeriveStatus()

		return tx.Save(&batch).Error
	})
}

// ReopenBatchOutcome returns a failed file's slot to pending when the
// record is queued for reprocessing, so its next terminal state is
// counted like a first delivery.
func ReopenBatchOutcome(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var batch model.BatchUpload
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&batch, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if batch.Failed <= 0 {
			return nil
		}
		batch.Failed--
		batch.Pending++
		batch.Status = batch.DeriveStatus()

		return tx.Save(&batch).Error
	})
}
