// Package notify polls the unread-count endpoint on a fixed interval
// while a session exists. The count is the only thing kept warm; the
// list is fetched lazily when the dropdown opens and is not kept in
// sync otherwise.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/models"
)

type Poller struct {
	api      *api.Client
	log      zerolog.Logger
	interval time.Duration

	mu     sync.Mutex
	cron   *cron.Cron
	unread int
	list   []models.Notification
}

func NewPoller(client *api.Client, interval time.Duration, log zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		api:      client,
		log:      log,
		interval: interval,
	}
}

// Start begins the repeating unread poll, with one immediate poll so
// the badge is right straight after login. Idempotent while running.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cron != nil {
		p.mu.Unlock()
		return nil
	}
	c := cron.New()
	p.cron = c
	p.mu.Unlock()

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), func() {
		pollCtx, cancel := context.WithTimeout(context.Background(), p.interval)
		defer cancel()
		if err := p.Poll(pollCtx); err != nil {
			p.log.Warn().Err(err).Msg("unread poll failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule unread poll: %w", err)
	}

	if err := p.Poll(ctx); err != nil {
		p.log.Warn().Err(err).Msg("initial unread poll failed")
	}

	c.Start()
	return nil
}

// Stop tears the poller down. Must be called on logout so no orphaned
// polls outlive the session.
func (p *Poller) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.unread = 0
	p.list = nil
	p.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Poll fetches the unread count once.
func (p *Poller) Poll(ctx context.Context) error {
	var data struct {
		Count int `json:"count"`
	}
	if err := p.api.Get(ctx, "/notifications/unread-count", nil, &data); err != nil {
		return err
	}

	p.mu.Lock()
	p.unread = data.Count
	p.mu.Unlock()
	return nil
}

func (p *Poller) Unread() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// List fetches a page of notifications on demand. Opening the dropdown
// is the sole refresh trigger; nothing keeps this warm.
func (p *Poller) List(ctx context.Context, page, pageSize int) ([]models.Notification, models.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("page_size", strconv.Itoa(pageSize))

	var result models.Page[models.Notification]
	if err := p.api.Get(ctx, "/notifications", params, &result); err != nil {
		return nil, models.Pagination{}, err
	}

	p.mu.Lock()
	p.list = result.List
	p.mu.Unlock()
	return result.List, result.Pagination, nil
}

// MarkRead flips local state immediately and lets the server call
// follow. Read state is low stakes and eventually consistent, so a
// failed call is logged and left alone — no rollback.
func (p *Poller) MarkRead(ctx context.Context, id int64) {
	p.mu.Lock()
	for i := range p.list {
		if p.list[i].ID == id && !p.list[i].IsRead {
			p.list[i].IsRead = true
			if p.unread > 0 {
				p.unread--
			}
			break
		}
	}
	p.mu.Unlock()

	if err := p.api.Put(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		p.log.Warn().Err(err).Int64("notification_id", id).Msg("mark read failed")
	}
}

// MarkAllRead zeroes the badge. Safe to call repeatedly; the count
// never goes negative.
func (p *Poller) MarkAllRead(ctx context.Context) {
	p.mu.Lock()
	for i := range p.list {
		p.list[i].IsRead = true
	}
	p.unread = 0
	p.mu.Unlock()

	if err := p.api.Put(ctx, "/notifications/read-all", nil, nil); err != nil {
		p.log.Warn().Err(err).Msg("mark all read failed")
	}
}

// Cached returns the last fetched list without a server call.
func (p *Poller) Cached() []models.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Notification(nil), p.list...)
}
