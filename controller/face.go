package controller

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"media-engine-backend/dao"
	"media-engine-backend/response"
)

// GetFaceGroups lists the recurring people found across the user's
// media, with the records each one appears in.
func GetFaceGroups(c *gin.Context) {
	email := c.GetString("email")
	groups, err := dao.GetFaceGroupsByEmail(email)
	if err != nil {
		slog.Error(ErrGetFaceGroups.Error(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrGetFaceGroups.Error(),
		})
		return
	}

	resp := response.GetFaceGroupsResponse{Groups: make([]response.FaceGroupResponse, 0, len(groups))}
	for _, group := range groups {
		appearances, err := dao.GetFaceAppearancesByGroup(group.ID)
		if err != nil {
			slog.Error(ErrGetFaceGroups.Error(), "group_id", group.ID, "err", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
				Msg: ErrGetFaceGroups.Error(),
			})
			return
		}

		mediaIDs := make([]uint, 0, len(appearances))
		for _, a := range appearances {
			mediaIDs = append(mediaIDs, a.MediaID)
		}
		resp.Groups = append(resp.Groups, response.FaceGroupResponse{
			GroupID:  group.ID,
			Size:     group.Size,
			MediaIDs: mediaIDs,
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}
