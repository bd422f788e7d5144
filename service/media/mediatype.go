package media

import (
	"path/filepath"
	"strings"

	"media-engine-backend/model"
)

var extensionTypes = map[string]model.MediaType{
	"jpg": model.MediaTypeImage, "jpeg": model.MediaTypeImage, "png": model.MediaTypeImage,
	"gif": model.MediaTypeImage, "bmp": model.MediaTypeImage, "webp": model.MediaTypeImage,
	"heic": model.MediaTypeImage, "tiff": model.MediaTypeImage,

	"mp4": model.MediaTypeVideo, "mov": model.MediaTypeVideo, "avi": model.MediaTypeVideo,
	"mkv": model.MediaTypeVideo, "webm": model.MediaTypeVideo, "wmv": model.MediaTypeVideo,

	"mp3": model.MediaTypeAudio, "wav": model.MediaTypeAudio, "flac": model.MediaTypeAudio,
	"m4a": model.MediaTypeAudio, "ogg": model.MediaTypeAudio, "aac": model.MediaTypeAudio,

	"pdf": model.MediaTypeDocument, "doc": model.MediaTypeDocument, "docx": model.MediaTypeDocument,
	"txt": model.MediaTypeDocument, "md": model.MediaTypeDocument, "rtf": model.MediaTypeDocument,
	"ppt": model.MediaTypeDocument, "pptx": model.MediaTypeDocument,
	"xls": model.MediaTypeDocument, "xlsx": model.MediaTypeDocument, "csv": model.MediaTypeDocument,

	"eml": model.MediaTypeEmail, "msg": model.MediaTypeEmail,

	"zip": model.MediaTypeArchive, "tar": model.MediaTypeArchive, "gz": model.MediaTypeArchive,
	"rar": model.MediaTypeArchive, "7z": model.MediaTypeArchive,

	"py": model.MediaTypeCode, "js": model.MediaTypeCode, "ts": model.MediaTypeCode,
	"go": model.MediaTypeCode, "java": model.MediaTypeCode, "c": model.MediaTypeCode,
	"cpp": model.MediaTypeCode, "h": model.MediaTypeCode, "rb": model.MediaTypeCode,
	"rs": model.MediaTypeCode, "php": model.MediaTypeCode, "sh": model.MediaTypeCode,
	"html": model.MediaTypeCode, "css": model.MediaTypeCode, "sql": model.MediaTypeCode,
}

// TypeFromFileName classifies by extension at registration time. The
// pipeline may refine it later from the sniffed mime type.
func TypeFromFileName(name string) model.MediaType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return model.MediaTypeUnknown
}

// typeFromMime resolves records the extension could not classify,
// using the content-sniffed mime type.
func typeFromMime(mime string) model.MediaType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return model.MediaTypeImage
	case strings.HasPrefix(mime, "video/"):
		return model.MediaTypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return model.MediaTypeAudio
	case mime == "application/pdf" || strings.HasPrefix(mime, "text/"):
		return model.MediaTypeDocument
	case mime == "application/zip" || mime == "application/x-tar" || mime == "application/gzip":
		return model.MediaTypeArchive
	}
	return model.MediaTypeUnknown
}
