// Package catalog wraps the read-mostly browsing endpoints: products,
// categories and reviews.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"suju/storefront/internal/api"
	"suju/storefront/internal/models"
)

type Service struct {
	api *api.Client
}

func NewService(client *api.Client) *Service {
	return &Service{api: client}
}

type ProductQuery struct {
	Page       int
	PageSize   int
	CategoryID int64
	TagID      int64
	MinPrice   float64
	MaxPrice   float64
	// price_asc, price_desc, sales, newest, popular
	SortBy  string
	Keyword string
}

func (q ProductQuery) values() url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.CategoryID > 0 {
		params.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.TagID > 0 {
		params.Set("tag_id", strconv.FormatInt(q.TagID, 10))
	}
	if q.MinPrice > 0 {
		params.Set("min_price", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		params.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	return params
}

func (s *Service) Products(ctx context.Context, query ProductQuery) (models.Page[models.Product], error) {
	var page models.Page[models.Product]
	if err := s.api.Get(ctx, "/products", query.values(), &page); err != nil {
		return models.Page[models.Product]{}, err
	}
	return page, nil
}

func (s *Service) Product(ctx context.Context, id int64) (models.ProductDetail, error) {
	var detail models.ProductDetail
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d", id), nil, &detail); err != nil {
		return models.ProductDetail{}, err
	}
	return detail, nil
}

func (s *Service) Related(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var products []models.Product
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d/related", productID), params, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.api.Get(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) Category(ctx context.Context, id int64) (models.Category, error) {
	var category models.Category
	if err := s.api.Get(ctx, fmt.Sprintf("/categories/%d", id), nil, &category); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

type ReviewQuery struct {
	Page     int
	PageSize int
	// newest, rating_desc, rating_asc
	SortBy string
}

func (s *Service) ProductReviews(ctx context.Context, productID int64, query ReviewQuery) (models.Page[models.Review], error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(query.PageSize))
	}
	if query.SortBy != "" {
		params.Set("sort_by", query.SortBy)
	}

	var page models.Page[models.Review]
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d/reviews", productID), params, &page); err != nil {
		return models.Page[models.Review]{}, err
	}
	return page, nil
}

type CreateReviewInput struct {
	OrderID     int64    `json:"order_id"`
	Rating      int      `json:"rating"`
	Content     string   `json:"content"`
	ImageURLs   []string `json:"image_urls,omitempty"`
	IsAnonymous bool     `json:"is_anonymous,omitempty"`
}

func (s *Service) CreateReview(ctx context.Context, productID int64, input CreateReviewInput) (models.Review, error) {
	var review models.Review
	if err := s.api.Post(ctx, fmt.Sprintf("/products/%d/reviews", productID), input, &review); err != nil {
		return models.Review{}, err
	}
	return review, nil
}
