package devserver

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"suju/storefront/internal/models"
)

type createOrderRequest struct {
	CartItemIDs   []int64 `json:"cart_item_ids"`
	AddressID     int64   `json:"address_id"`
	PaymentMethod string  `json:"payment_method"`
	Note          string  `json:"note"`
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	order, err := s.store.CreateOrder(currentUser(c).ID, req.CartItemIDs, req.AddressID, req.PaymentMethod, req.Note)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, gin.H{
		"order": order.OrderSummary,
		"payment": gin.H{
			"payment_url": "/v1/orders/" + strconv.FormatInt(order.ID, 10) + "/pay",
			"expire_at":   time.Now().Add(30 * time.Minute).Format(time.RFC3339),
		},
	})
}

func (s *Server) handleListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	status := models.OrderStatus(c.Query("status"))

	ok(c, s.store.Orders(currentUser(c).ID, status, page, pageSize))
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	order, err := s.store.Order(currentUser(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, order)
}

func (s *Server) handlePayOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.PayOrder(currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.store.CancelOrder(currentUser(c).ID, id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleConfirmOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.ConfirmOrder(currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleRequestRefund(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.store.RequestRefund(currentUser(c).ID, id, req.Reason); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleShipOrder(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.ShipOrder(id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleListRefunds(c *gin.Context) {
	status := models.RefundStatus(c.Query("status"))
	ok(c, s.store.Refunds(status))
}

type refundDecisionRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func (s *Server) handleApproveRefund(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req refundDecisionRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.store.ApproveRefund(id, req.AdminNotes); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleRejectRefund(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req refundDecisionRequest
	_ = c.ShouldBindJSON(&req)

	if err := s.store.RejectRefund(id, req.AdminNotes); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
