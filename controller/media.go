package controller

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"media-engine-backend/dao"
	"media-engine-backend/model"
	"media-engine-backend/request"
	"media-engine-backend/response"
	"media-engine-backend/service/media"
	"media-engine-backend/service/mq"
)

const presignedLinkTTL = 15 * time.Minute

// GetUploadLink issues a presigned PUT URL so the frontend uploads
// straight to OSS. The object key is namespaced per user and
// randomized so re-uploads never clobber each other.
func GetUploadLink(c *gin.Context) {
	email := c.GetString("email")
	fileName := c.Query("file-name")
	if fileName == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	objectName := email + "/" + uuid.NewString() + "-" + fileName
	url, err := objects.PresignPut(c.Request.Context(), objectName, presignedLinkTTL)
	if err != nil {
		slog.Error(ErrGetUploadLink.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetUploadLink.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.UploadLinkResponse{
			URL:        url,
			ObjectName: objectName,
		},
	})
}

// RegisterMedia is called after the frontend finished its direct
// upload: it persists the record and enqueues the processing job.
func RegisterMedia(c *gin.Context) {
	var req request.RegisterMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	if !strings.HasPrefix(req.ObjectName, email+"/") {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	rec := &model.MediaRecord{
		UserEmail:        email,
		BatchID:          req.BatchID,
		FileName:         req.FileName,
		MediaType:        media.TypeFromFileName(req.FileName),
		FileSize:         req.FileSize,
		ObjectName:       req.ObjectName,
		ProcessingStatus: model.StatusPending,
	}
	if err := dao.CreateMedia(rec); err != nil {
		slog.Error(ErrRegisterMedia.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrRegisterMedia.Error(),
		})
		return
	}

	if err := mq.SendProcessMessage(c.Request.Context(), rec.ID); err != nil {
		slog.Error(ErrRegisterMedia.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrRegisterMedia.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.CreateMediaResponse{
			MediaID: rec.ID,
		},
	})
}

func GetMediaList(c *gin.Context) {
	email := c.GetString("email")
	recs, err := dao.GetMediaByEmail(email)
	if err != nil {
		slog.Error(ErrGetMedia.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetMedia.Error(),
		})
		return
	}

	resp := response.GetMediaListResponse{Media: make([]*model.MediaRecord, len(recs))}
	for i := range recs {
		resp.Media[i] = &recs[i]
	}
	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}

func GetMedia(c *gin.Context) {
	rec, ok := loadOwnedMedia(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Response{
		Data: rec,
	})
}

// DeleteMedia soft-deletes the record and enqueues cleanup of the OSS
// object and the stored vectors.
func DeleteMedia(c *gin.Context) {
	rec, ok := loadOwnedMedia(c)
	if !ok {
		return
	}

	email := c.GetString("email")
	if err := dao.SoftDeleteMedia(rec.ID, email); err != nil {
		slog.Error(ErrDeleteMedia.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrDeleteMedia.Error(),
		})
		return
	}

	if err := mq.SendDeleteMessage(c.Request.Context(), rec.ID, rec.ObjectName); err != nil {
		// record is already gone from the API's view; cleanup can be
		// redone manually if this send keeps failing
		slog.Error("Failed to enqueue media cleanup", "media_id", rec.ID, "err", err)
	}

	c.JSON(http.StatusOK, response.Response{})
}

// ReprocessMedia re-queues a failed record. Completed or in-flight
// records are left alone.
func ReprocessMedia(c *gin.Context) {
	rec, ok := loadOwnedMedia(c)
	if !ok {
		return
	}

	email := c.GetString("email")
	reset, err := dao.ResetMediaForReprocess(rec.ID, email)
	if err != nil {
		slog.Error(ErrReprocessMedia.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrReprocessMedia.Error(),
		})
		return
	}
	if !reset {
		c.AbortWithStatusJSON(http.StatusConflict, response.Response{
			Msg: "only failed media can be reprocessed",
		})
		return
	}

	// the record's failed outcome goes back to pending so the rerun
	// counts like a first delivery
	if rec.BatchID != nil {
		if err := dao.ReopenBatchOutcome(*rec.BatchID); err != nil {
			slog.Error("Failed to reopen batch slot", "batch_id", *rec.BatchID, "media_id", rec.ID, "err", err)
		}
	}

	if err := mq.SendProcessMessage(c.Request.Context(), rec.ID); err != nil {
		slog.Error(ErrReprocessMedia.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrReprocessMedia.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func SetFavorite(c *gin.Context) {
	rec, ok := loadOwnedMedia(c)
	if !ok {
		return
	}

	var req request.SetFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	email := c.GetString("email")
	if err := dao.SetMediaFavorite(rec.ID, email, req.Favorite); err != nil {
		slog.Error(ErrSetFavorite.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrSetFavorite.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{})
}

func GetDownloadLink(c *gin.Context) {
	rec, ok := loadOwnedMedia(c)
	if !ok {
		return
	}

	url, err := objects.PresignGet(c.Request.Context(), rec.ObjectName, presignedLinkTTL)
	if err != nil {
		slog.Error(ErrGetDownloadLink.Error(), "media_id", rec.ID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetDownloadLink.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: response.DownloadLinkResponse{
			URL: url,
		},
	})
}

// loadOwnedMedia resolves the :id path parameter to a record owned by
// the authenticated user, writing the error response itself when that
// fails.
func loadOwnedMedia(c *gin.Context) (*model.MediaRecord, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return nil, false
	}

	rec, err := dao.GetMediaByID(uint(id))
	if err != nil {
		slog.Error(ErrGetMedia.Error(), "media_id", id, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetMedia.Error(),
		})
		return nil, false
	}
	if rec == nil || rec.UserEmail != c.GetString("email") {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrMediaNotFound.Error(),
		})
		return nil, false
	}
	return rec, true
}
