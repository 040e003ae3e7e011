package devserver

import (
	"github.com/gin-gonic/gin"

	"suju/storefront/internal/models"
)

func (s *Server) handleListAddresses(c *gin.Context) {
	ok(c, s.store.Addresses(currentUser(c).ID))
}

type addressRequest struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detail_address"`
	IsDefault     bool   `json:"is_default"`
}

func (r addressRequest) toModel() models.Address {
	return models.Address{
		RecipientName: r.RecipientName,
		Phone:         r.Phone,
		Province:      r.Province,
		City:          r.City,
		District:      r.District,
		DetailAddress: r.DetailAddress,
		IsDefault:     r.IsDefault,
	}
}

func (s *Server) handleCreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}
	ok(c, s.store.CreateAddress(currentUser(c).ID, req.toModel()))
}

func (s *Server) handleUpdateAddress(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	address, err := s.store.UpdateAddress(currentUser(c).ID, id, req.toModel())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, address)
}

func (s *Server) handleDeleteAddress(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := s.store.DeleteAddress(currentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}

func (s *Server) handleToggleFavorite(c *gin.Context) {
	id, valid := paramID(c, "productId")
	if !valid {
		return
	}
	isFavorite, err := s.store.ToggleFavorite(currentUser(c).ID, id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"is_favorite": isFavorite})
}

func (s *Server) handleListFavorites(c *gin.Context) {
	ok(c, s.store.Favorites(currentUser(c).ID))
}

func (s *Server) handleCheckFavorite(c *gin.Context) {
	id, valid := paramID(c, "productId")
	if !valid {
		return
	}
	ok(c, gin.H{"is_favorite": s.store.IsFavorite(currentUser(c).ID, id)})
}
