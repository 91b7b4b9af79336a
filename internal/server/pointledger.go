package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/openunited/platform/internal/pointledger/domain"
)

type createGrantRequest struct {
	Amount    int64  `json:"amount"`
	GrantedBy string `json:"granted_by"`
	Rationale string `json:"rationale"`
}

func (s *Server) CreateGrant(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req createGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	grantedBy, err := snowflake.ParseString(strings.TrimSpace(req.GrantedBy))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	grant, err := s.ledgerSvc.Grant(c.Request.Context(), orgID, req.Amount, grantedBy, strings.TrimSpace(req.Rationale))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

func (s *Server) GetOrgPointBalance(c *gin.Context) {
	orgID, ok := parseID(c, "id")
	if !ok {
		return
	}

	balance, err := s.ledgerSvc.OrgBalance(c.Request.Context(), orgID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organisation_id": orgID.String(), "balance": balance})
}

func (s *Server) GetProductPointBalance(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}

	balance, err := s.ledgerSvc.ProductBalance(c.Request.Context(), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product_id": productID.String(), "balance": balance})
}

func (s *Server) ListPointTransactions(c *gin.Context) {
	var filter ledgerdomain.TransactionFilter

	if raw := strings.TrimSpace(c.Query("org_account_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.OrgAccountID = &id
	}
	if raw := strings.TrimSpace(c.Query("product_account_id")); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.ProductAccountID = &id
	}
	filter.Type = ledgerdomain.TransactionType(strings.TrimSpace(c.Query("type")))
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.Limit = limit
	}

	rows, err := s.ledgerSvc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows})
}
