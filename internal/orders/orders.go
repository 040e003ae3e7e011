// Package orders drives the order lifecycle from the client side. The
// viewer never infers the next status: every transition is one API call
// followed by a full re-fetch, and the server's word on valid
// transitions is final. A rejected transition (double click, stale
// view) surfaces as an error message, never a crash.
package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/models"
)

type Viewer struct {
	api *api.Client
	log zerolog.Logger
}

func NewViewer(client *api.Client, log zerolog.Logger) *Viewer {
	return &Viewer{api: client, log: log}
}

type CreateInput struct {
	CartItemIDs   []int64 `json:"cart_item_ids"`
	AddressID     int64   `json:"address_id"`
	PaymentMethod string  `json:"payment_method"`
	Note          string  `json:"note,omitempty"`
}

type CreateResult struct {
	Order   models.OrderSummary `json:"order"`
	Payment struct {
		PaymentURL string `json:"payment_url"`
		ExpireAt   string `json:"expire_at"`
	} `json:"payment"`
}

// Create places an order from the selected cart item ids. The cart
// itself is not mutated here; the server consumes the items.
func (v *Viewer) Create(ctx context.Context, input CreateInput) (CreateResult, error) {
	var result CreateResult
	if err := v.api.Post(ctx, "/orders", input, &result); err != nil {
		return CreateResult{}, err
	}
	return result, nil
}

type ListQuery struct {
	Page     int
	PageSize int
	Status   models.OrderStatus
}

func (v *Viewer) List(ctx context.Context, query ListQuery) (models.Page[models.OrderSummary], error) {
	params := url.Values{}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(query.PageSize))
	}
	if query.Status != "" {
		params.Set("status", string(query.Status))
	}

	var page models.Page[models.OrderSummary]
	if err := v.api.Get(ctx, "/orders", params, &page); err != nil {
		return models.Page[models.OrderSummary]{}, err
	}
	return page, nil
}

func (v *Viewer) Get(ctx context.Context, id int64) (models.OrderDetail, error) {
	var detail models.OrderDetail
	if err := v.api.Get(ctx, fmt.Sprintf("/orders/%d", id), nil, &detail); err != nil {
		return models.OrderDetail{}, err
	}
	return detail, nil
}

// Pay settles a pending order. Development/demo payment: the real
// payment provider handoff lives behind the payment_url from Create.
func (v *Viewer) Pay(ctx context.Context, id int64) (models.OrderDetail, error) {
	return v.transition(ctx, id, "pay", nil)
}

func (v *Viewer) Cancel(ctx context.Context, id int64, reason string) (models.OrderDetail, error) {
	return v.transition(ctx, id, "cancel", map[string]any{"reason": reason})
}

// Confirm acknowledges receipt of a shipped order.
func (v *Viewer) Confirm(ctx context.Context, id int64) (models.OrderDetail, error) {
	return v.transition(ctx, id, "confirm", nil)
}

// RequestRefund opens a refund on a paid order. The admin decision
// (approve or reject) happens out of band; the order flips to refunded
// only once approved.
func (v *Viewer) RequestRefund(ctx context.Context, id int64, reason string) (models.OrderDetail, error) {
	return v.transition(ctx, id, "refund", map[string]any{"reason": reason})
}

func (v *Viewer) transition(ctx context.Context, id int64, action string, body map[string]any) (models.OrderDetail, error) {
	if err := v.api.Put(ctx, fmt.Sprintf("/orders/%d/%s", id, action), body, nil); err != nil {
		v.log.Warn().Err(err).Int64("order_id", id).Str("action", action).Msg("order transition rejected")
		return models.OrderDetail{}, err
	}

	// Re-fetch for the authoritative status and the appended timeline
	// entry.
	return v.Get(ctx, id)
}
