package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	cartdomain "github.com/openunited/platform/internal/cart/domain"
)

type createCartRequest struct {
	UserID         string `json:"user_id"`
	OrganisationID string `json:"organisation_id"`
	ProductID      string `json:"product_id"`
}

func (s *Server) CreateCart(c *gin.Context) {
	var req createCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	userID, err := snowflake.ParseString(strings.TrimSpace(req.UserID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	orgID, err := snowflake.ParseString(strings.TrimSpace(req.OrganisationID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	productID, err := snowflake.ParseString(strings.TrimSpace(req.ProductID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cart, err := s.cartSvc.Create(c.Request.Context(), userID, orgID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cart)
}

func (s *Server) GetCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	cart, items, err := s.cartSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cart":            cart,
		"items":           items,
		"total_usd_cents": cartdomain.TotalUSDCents(items),
		"subtotal_cents":  cartdomain.SubtotalUSDCents(items),
		"total_points":    cartdomain.TotalPoints(items),
	})
}

type addCartItemRequest struct {
	BountyID    string `json:"bounty_id"`
	FundingType string `json:"funding_type"`
	Amount      int64  `json:"amount"`
}

func (s *Server) AddCartItem(c *gin.Context) {
	cartID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	bountyID, err := snowflake.ParseString(strings.TrimSpace(req.BountyID))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	item, err := s.cartSvc.AddBountyItem(c.Request.Context(), cartID, bountyID,
		cartdomain.FundingType(strings.TrimSpace(req.FundingType)), req.Amount)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (s *Server) RemoveCartItem(c *gin.Context) {
	cartID, ok := parseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseID(c, "item_id")
	if !ok {
		return
	}

	if err := s.cartSvc.RemoveItem(c.Request.Context(), cartID, itemID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CheckoutCart(c *gin.Context) {
	cartID, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := s.orderSvc.Checkout(c.Request.Context(), cartID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := gin.H{}
	if result.SalesOrder != nil {
		resp["sales_order"] = result.SalesOrder
	}
	if result.PointOrder != nil {
		resp["point_order"] = result.PointOrder
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) AbandonCart(c *gin.Context) {
	cartID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := s.cartSvc.Abandon(c.Request.Context(), cartID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
