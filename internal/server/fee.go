package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createFeeConfigurationRequest struct {
	Percentage  int64      `json:"percentage"`
	AppliesFrom *time.Time `json:"applies_from,omitempty"`
}

func (s *Server) CreateFeeConfiguration(c *gin.Context) {
	var req createFeeConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	appliesFrom := time.Now().UTC()
	if req.AppliesFrom != nil {
		appliesFrom = req.AppliesFrom.UTC()
	}

	cfg, err := s.feeSvc.Create(c.Request.Context(), req.Percentage, appliesFrom)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cfg)
}

func (s *Server) ListFeeConfigurations(c *gin.Context) {
	rows, err := s.feeSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}

type setTaxRateRequest struct {
	RateBps int64 `json:"rate_bps"`
}

func (s *Server) SetOrganisationTaxRate(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req setTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	rate, err := s.taxResolver.SetOrganisationRate(c.Request.Context(), orgID, req.RateBps)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, rate)
}
