package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	workitemdomain "github.com/openunited/platform/internal/workitem/domain"
)

type createProductRequest struct {
	Name string `json:"name"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	product, err := s.workItemSvc.CreateProduct(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

type createChallengeRequest struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
}

func (s *Server) CreateChallenge(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	challenge, err := s.workItemSvc.CreateChallenge(c.Request.Context(), productID, strings.TrimSpace(req.Title))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

func (s *Server) CreateCompetition(c *gin.Context) {
	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	competition, err := s.workItemSvc.CreateCompetition(c.Request.Context(), productID, strings.TrimSpace(req.Title))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, competition)
}

type createBountyRequest struct {
	ProductID     string  `json:"product_id"`
	ChallengeID   *string `json:"challenge_id,omitempty"`
	CompetitionID *string `json:"competition_id,omitempty"`
	Title         string  `json:"title"`
	RewardType    string  `json:"reward_type"`
	RewardAmount  int64   `json:"reward_amount"`
}

func (s *Server) CreateBounty(c *gin.Context) {
	var req createBountyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	create := workitemdomain.CreateBountyRequest{
		ProductID:    productID,
		Title:        strings.TrimSpace(req.Title),
		RewardType:   workitemdomain.RewardType(strings.TrimSpace(req.RewardType)),
		RewardAmount: req.RewardAmount,
	}
	if req.ChallengeID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.ChallengeID))
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		create.ChallengeID = &id
	}
	if req.CompetitionID != nil {
		id, err := snowflake.ParseString(strings.TrimSpace(*req.CompetitionID))
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		create.CompetitionID = &id
	}

	bounty, err := s.workItemSvc.CreateBounty(c.Request.Context(), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bounty)
}

func (s *Server) GetBounty(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	bounty, err := s.workItemSvc.GetBounty(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, bounty)
}

type placeBidRequest struct {
	PersonID string `json:"person_id"`
	Amount   int64  `json:"amount"`
}

func (s *Server) PlaceBid(c *gin.Context) {
	bountyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	personID, err := snowflake.ParseString(strings.TrimSpace(req.PersonID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	bid, err := s.workItemSvc.PlaceBid(c.Request.Context(), bountyID, personID, req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bid)
}

func (s *Server) AcceptBid(c *gin.Context) {
	bidID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := s.adjustmentSvc.AcceptBid(c.Request.Context(), bidID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{"bid": result.Bid}
	if result.AdjustmentOrder != nil {
		resp["adjustment_order"] = result.AdjustmentOrder
	}
	c.JSON(http.StatusOK, resp)
}
