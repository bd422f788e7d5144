package controller

import "errors"

var (
	ErrParseRequest = errors.New("failed to parse request")

	ErrUserRegister  = errors.New("failed to register user")
	ErrGenerateToken = errors.New("failed to generate token")
	ErrUserLogin     = errors.New("failed to login")

	ErrGetUploadLink   = errors.New("failed to generate upload link")
	ErrRegisterMedia   = errors.New("failed to register media")
	ErrGetMedia        = errors.New("failed to get media")
	ErrMediaNotFound   = errors.New("media not found")
	ErrDeleteMedia     = errors.New("failed to delete media")
	ErrReprocessMedia  = errors.New("failed to reprocess media")
	ErrSetFavorite     = errors.New("failed to update favorite flag")
	ErrGetDownloadLink = errors.New("failed to get download link")

	ErrCreateBatch = errors.New("failed to create batch")
	ErrGetBatch    = errors.New("failed to get batch")

	ErrSearchMedia = errors.New("failed to search media")

	ErrGetFaceGroups = errors.New("failed to get face groups")

	ErrEventStream = errors.New("failed to open event stream")
)
