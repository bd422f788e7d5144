package request

// RegisterMediaRequest is sent after the frontend finished a direct
// upload to OSS. ObjectName is the key the upload-link endpoint issued.
type RegisterMediaRequest struct {
	FileName   string `json:"file_name" binding:"required"`
	ObjectName string `json:"object_name" binding:"required"`
	FileSize   int64  `json:"file_size"`
	BatchID    *uint  `json:"batch_id"`
}

type CreateBatchRequest struct {
	Total int `json:"total" binding:"required,min=1"`
}

type SetFavoriteRequest struct {
	Favorite bool `json:"favorite"`
}
