package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	noticedomain "github.com/sahayog-foundation/sahayog/internal/notice/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

type listNoticesQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// ListPublishedNotices serves the public notice board feed.
func (s *Server) ListPublishedNotices(c *gin.Context) {
	var query listNoticesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.noticeSvc.List(c.Request.Context(), noticedomain.ListNoticeRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		PublishedOnly: true,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListAllNotices(c *gin.Context) {
	var query listNoticesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.noticeSvc.List(c.Request.Context(), noticedomain.ListNoticeRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) CreateNotice(c *gin.Context) {
	var req noticedomain.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if user := currentUser(c); user != nil {
		authorID := user.ID
		req.AuthorID = &authorID
	}

	notice, err := s.noticeSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notice": notice})
}

func (s *Server) UpdateNotice(c *gin.Context) {
	var req noticedomain.UpdateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	notice, err := s.noticeSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notice": notice})
}

func (s *Server) DeleteNotice(c *gin.Context) {
	if err := s.noticeSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
