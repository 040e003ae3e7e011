package devserver

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)
	tagID, _ := strconv.ParseInt(c.Query("tag_id"), 10, 64)
	minPrice, _ := strconv.ParseFloat(c.Query("min_price"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("max_price"), 64)

	ok(c, s.store.Products(ProductFilter{
		CategoryID: categoryID,
		TagID:      tagID,
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		SortBy:     c.Query("sort_by"),
		Keyword:    c.Query("keyword"),
		Page:       page,
		PageSize:   pageSize,
	}))
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	product, err := s.store.Product(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, product)
}

func (s *Server) handleRelatedProducts(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	ok(c, s.store.RelatedProducts(id, limit))
}

func (s *Server) handleListCategories(c *gin.Context) {
	ok(c, s.store.Categories())
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	category, err := s.store.Category(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, category)
}

func (s *Server) handleListReviews(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	ok(c, s.store.Reviews(id, page, pageSize))
}

type createReviewRequest struct {
	OrderID   int64    `json:"order_id"`
	Rating    int      `json:"rating"`
	Content   string   `json:"content"`
	ImageURLs []string `json:"image_urls"`
}

func (s *Server) handleCreateReview(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	review, err := s.store.CreateReview(currentUser(c).ID, id, req.OrderID, req.Rating, req.Content, req.ImageURLs)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, review)
}
