package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetSalesOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := s.orderSvc.GetSalesOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) ProcessSalesOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	settled, err := s.orderSvc.ProcessSalesOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetSalesOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settled": settled, "order": order})
}

func (s *Server) RefundSalesOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	refunded, err := s.orderSvc.RefundSalesOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetSalesOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunded": refunded, "order": order})
}

func (s *Server) GetPointOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := s.orderSvc.GetPointOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) CompletePointOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	settled, err := s.orderSvc.CompletePointOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetPointOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settled": settled, "order": order})
}

func (s *Server) RefundPointOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	refunded, err := s.orderSvc.RefundPointOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	order, err := s.orderSvc.GetPointOrder(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunded": refunded, "order": order})
}
