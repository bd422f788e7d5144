package response

import "media-engine-backend/model"

type GetMediaListResponse struct {
	Media []*model.MediaRecord `json:"media"`
}

type CreateMediaResponse struct {
	MediaID uint `json:"media_id"`
}

type UploadLinkResponse struct {
	URL        string `json:"url"`
	ObjectName string `json:"object_name"`
}

type DownloadLinkResponse struct {
	URL string `json:"url"`
}

type CreateBatchResponse struct {
	BatchID uint `json:"batch_id"`
}

type SearchResultResponse struct {
	Media      model.MediaRecord `json:"media"`
	Similarity float64           `json:"similarity"`
	MatchType  string            `json:"match_type"`
}

type SearchResponse struct {
	Results []SearchResultResponse `json:"results"`
}

type FaceGroupResponse struct {
	GroupID  uint   `json:"group_id"`
	Size     int    `json:"size"`
	MediaIDs []uint `json:"media_ids"`
}

type GetFaceGroupsResponse struct {
	Groups []FaceGroupResponse `json:"groups"`
}
