package models

import "time"

type Tag struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Category struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	ParentID    int64      `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	IsActive    bool       `json:"is_active"`
	Children    []Category `json:"children,omitempty"`
}

type ProductParam struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Product struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description,omitempty"`
	Price            float64   `json:"price"`
	OriginalPrice    float64   `json:"original_price,omitempty"`
	MainImageURL     string    `json:"main_image_url,omitempty"`
	Stock            int       `json:"stock"`
	SalesCount       int       `json:"sales_count"`
	IsPublished      bool      `json:"is_published"`
	Tags             []Tag     `json:"tags"`
	Category         *Category `json:"category,omitempty"`
}

type ReviewsSummary struct {
	Total         int     `json:"total"`
	AverageRating float64 `json:"average_rating"`
	Rating5       int     `json:"rating_5"`
	Rating4       int     `json:"rating_4"`
	Rating3       int     `json:"rating_3"`
	Rating2       int     `json:"rating_2"`
	Rating1       int     `json:"rating_1"`
}

type ProductDetail struct {
	Product

	Description    string          `json:"description,omitempty"`
	ImageURLs      []string        `json:"image_urls,omitempty"`
	Params         []ProductParam  `json:"params"`
	ViewCount      int             `json:"view_count"`
	CreatedAt      time.Time       `json:"created_at"`
	ReviewsSummary *ReviewsSummary `json:"reviews_summary,omitempty"`
}

type ReviewUser struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Review struct {
	ID        int64      `json:"id"`
	User      ReviewUser `json:"user"`
	Rating    int        `json:"rating"`
	Content   string     `json:"content"`
	ImageURLs []string   `json:"image_urls,omitempty"`
	LikeCount int        `json:"like_count"`
	IsLiked   bool       `json:"is_liked"`
	CreatedAt time.Time  `json:"created_at"`
}

type Favorite struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	ProductID int64       `json:"product_id"`
	Product   CartProduct `json:"product"`
	CreatedAt time.Time   `json:"created_at"`
}
