package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"media-engine-backend/dao"
	"media-engine-backend/model"
	"media-engine-backend/request"
	"media-engine-backend/response"
)

// CreateBatch opens a batch before its files are registered; every
// RegisterMedia call carrying the returned id counts toward it.
func CreateBatch(c *gin.Context) {
	var req request.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Error(ErrParseRequest.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	batch := &model.BatchUpload{
		UserEmail: c.GetString("email"),
		Total:     req.Total,
		Pending:   req.Total,
		Status:    model.BatchStatusProcessing,
	}
	if err := dao.CreateBatch(batch); err != nil {
		slog.Error(ErrCreateBatch.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrCreateBatch.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.Response{
		Data: response.CreateBatchResponse{
			BatchID: batch.ID,
		},
	})
}

func GetBatch(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
			Msg: ErrParseRequest.Error(),
		})
		return
	}

	batch, err := dao.GetBatchByID(uint(id))
	if err != nil {
		slog.Error(ErrGetBatch.Error(), "batch_id", id, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetBatch.Error(),
		})
		return
	}
	if batch == nil || batch.UserEmail != c.GetString("email") {
		c.AbortWithStatusJSON(http.StatusNotFound, response.Response{
			Msg: ErrGetBatch.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Response{
		Data: batch,
	})
}
