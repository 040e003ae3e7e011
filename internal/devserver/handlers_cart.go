package devserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		failValidation(c, "invalid id", nil)
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetCart(c *gin.Context) {
	ok(c, s.store.Cart(currentUser(c).ID))
}

type addCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (s *Server) handleAddCartItem(c *gin.Context) {
	var req addCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := s.store.AddCartItem(currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cart)
}

type updateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) handleUpdateCartItem(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	cart, err := s.store.UpdateCartItem(currentUser(c).ID, id, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, cart)
}

func (s *Server) handleRemoveCartItem(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.RemoveCartItem(currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleClearCart(c *gin.Context) {
	s.store.ClearCart(currentUser(c).ID)
	ok(c, nil)
}
