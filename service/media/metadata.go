package media

import (
	"image"
	"log/slog"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"

	"media-engine-backend/model"
)

// extractMetadata fills in structural metadata readable without the
// AI backend: actual size, sniffed mime type, image dimensions.
// Everything here is best effort; a partial failure is logged and the
// job continues with what was extracted.
func extractMetadata(rec *model.MediaRecord, localPath string) {
	if info, err := os.Stat(localPath); err == nil {
		rec.FileSize = info.Size()
	} else {
		slog.Warn("Failed to stat media file", "media_id", rec.ID, "err", err)
	}

	if mtype, err := mimetype.DetectFile(localPath); err == nil {
		rec.MimeType = mtype.String()
		if rec.MediaType == model.MediaTypeUnknown {
			rec.MediaType = typeFromMime(mtype.String())
		}
	} else {
		slog.Warn("Failed to sniff mime type", "media_id", rec.ID, "err", err)
	}

	if rec.MediaType == model.MediaTypeImage {
		f, err := os.Open(localPath)
		if err != nil {
			slog.Warn("Failed to open image for dimensions", "media_id", rec.ID, "err", err)
			return
		}
		defer f.Close()

		cfg, _, err := image.DecodeConfig(f)
		if err != nil {
			// HEIC and other formats the stdlib cannot decode still get
			// dimensions from the AI backend's own pass
			slog.Warn("Failed to decode image dimensions", "media_id", rec.ID, "err", err)
			return
		}
		rec.Width = cfg.Width
		rec.Height = cfg.Height
	}
}
