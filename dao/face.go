package dao

import "media-engine-backend/model"

func GetFaceGroupsByEmail(email string) ([]model.FaceGroup, error) {
	var groups []model.FaceGroup
	if err := DB.Where("user_email = ?", email).Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func CreateFaceGroup(group *model.FaceGroup) error {
	return DB.Create(group).Error
}

func SaveFaceGroup(group *model.FaceGroup) error {
	return DB.Save(group).Error
}

func CreateFaceAppearance(appearance *model.FaceAppearance) error {
	return DB.Create(appearance).Error
}

func GetFaceAppearancesByGroup(groupID uint) ([]model.FaceAppearance, error) {
	var appearances []model.FaceAppearance
	if err := DB.Where("group_id = ?", groupID).Find(&appearances).Error; err != nil {
		return nil, err
	}
	return appearances, nil
}
