package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	volunteerdomain "github.com/sahayog-foundation/sahayog/internal/volunteer/domain"
	"github.com/sahayog-foundation/sahayog/pkg/db/pagination"
)

// ApplyVolunteer takes public volunteer applications; new applications
// always start out pending review.
func (s *Server) ApplyVolunteer(c *gin.Context) {
	var req volunteerdomain.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	volunteer, err := s.volunteerSvc.Apply(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"volunteer": volunteer})
}

type listVolunteersQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
	Status    string `form:"status"`
}

func (s *Server) ListVolunteers(c *gin.Context) {
	var query listVolunteersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.volunteerSvc.List(c.Request.Context(), volunteerdomain.ListVolunteerRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetVolunteerByID(c *gin.Context) {
	volunteer, err := s.volunteerSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"volunteer": volunteer})
}

func (s *Server) VolunteerIDCard(c *gin.Context) {
	document, err := s.volunteerSvc.IDCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="id-card.pdf"`)
	c.Data(http.StatusOK, "application/pdf", document)
}

func (s *Server) UpdateVolunteer(c *gin.Context) {
	var req volunteerdomain.UpdateVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	volunteer, err := s.volunteerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"volunteer": volunteer})
}
