package dao

import "media-engine-backend/model"

// MediaStore adapts the media queries to the interfaces the
// orchestrator and the search engine consume.
type MediaStore struct{}

func (MediaStore) GetByID(id uint) (*model.MediaRecord, error) {
	return GetMediaByID(id)
}

func (MediaStore) Save(rec *model.MediaRecord) error {
	return SaveMedia(rec)
}

func (MediaStore) GetByIDs(ids []uint) ([]model.MediaRecord, error) {
	return GetMediaByIDs(ids)
}

func (MediaStore) KeywordSearch(query string, limit int) ([]model.MediaRecord, error) {
	return KeywordSearchMedia(query, limit)
}

// BatchStore adapts batch counter updates.
type BatchStore struct{}

func (BatchStore) RecordOutcome(id uint, success bool) error {
	return RecordBatchOutcome(id, success)
}

func (BatchStore) ReplaceOutcome(id uint, success bool) error {
	return ReplaceBatchOutcome(id, success)
}

// FaceStore adapts face-group persistence for the clusterer.
type FaceStore struct{}

func (FaceStore) GroupsByEmail(email string) ([]model.FaceGroup, error) {
	return GetFaceGroupsByEmail(email)
}

func (FaceStore) CreateGroup(group *model.FaceGroup) error {
	return CreateFaceGroup(group)
}

func (FaceStore) SaveGroup(group *model.FaceGroup) error {
	return SaveFaceGroup(group)
}

func (FaceStore) CreateAppearance(appearance *model.FaceAppearance) error {
	return CreateFaceAppearance(appearance)
}
