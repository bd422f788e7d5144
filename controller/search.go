package controller

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"media-engine-backend/response"
	"media-engine-backend/service/search"
)

// SearchMedia runs hybrid keyword plus semantic search. Results are
// filtered to the caller's own records after ranking.
func SearchMedia(c *gin.Context) {
	query := c.Query("q")
	limit := search.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Response{
				Msg: ErrParseRequest.Error(),
			})
			return
		}
		limit = parsed
	}

	results, err := searchEngine.Search(c.Request.Context(), query, limit)
	if err != nil {
		slog.Error(ErrSearchMedia.Error(), "query", query, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Response{
			Msg: ErrSearchMedia.Error(),
		})
		return
	}

	email := c.GetString("email")
	resp := response.SearchResponse{Results: make([]response.SearchResultResponse, 0, len(results))}
	for _, res := range results {
		if res.Record.UserEmail != email {
			continue
		}
		resp.Results = append(resp.Results, response.SearchResultResponse{
			Media:      res.Record,
			Similarity: res.Similarity,
			MatchType:  string(res.MatchType),
		})
	}

	c.JSON(http.StatusOK, response.Response{
		Data: resp,
	})
}
