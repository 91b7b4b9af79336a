package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orgdomain "github.com/openunited/platform/internal/organization/domain"
)

type createOrganisationRequest struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	VATNumber *string `json:"vat_number,omitempty"`
}

func (s *Server) CreateOrganisation(c *gin.Context) {
	var req createOrganisationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.orgSvc.Create(c.Request.Context(), orgdomain.CreateRequest{
		Name:      strings.TrimSpace(req.Name),
		Country:   strings.ToUpper(strings.TrimSpace(req.Country)),
		VATNumber: req.VATNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, org)
}

func (s *Server) GetOrganisation(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	org, err := s.orgSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (s *Server) GetWallet(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	wallet, err := s.orgSvc.EnsureWallet(c.Request.Context(), nil, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}
