package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	messagedomain "github.com/sahayog-foundation/sahayog/internal/message/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

func (s *Server) SubmitMessage(c *gin.Context) {
	var req messagedomain.SubmitMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	message, err := s.messageSvc.Submit(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": message})
}

type listMessagesQuery struct {
	PageToken  string `form:"page_token"`
	PageSize   int    `form:"page_size"`
	UnreadOnly bool   `form:"unread_only"`
}

func (s *Server) ListMessages(c *gin.Context) {
	var query listMessagesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.messageSvc.List(c.Request.Context(), messagedomain.ListMessageRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		UnreadOnly: query.UnreadOnly,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) MarkMessageRead(c *gin.Context) {
	message, err := s.messageSvc.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}
