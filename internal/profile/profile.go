// Package profile covers the signed-in user's own data: profile
// updates, password changes, shipping addresses and favorites.
package profile

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/models"
)

type Service struct {
	api   *api.Client
	creds *credentials.Store
	log   zerolog.Logger
}

func NewService(client *api.Client, creds *credentials.Store, log zerolog.Logger) *Service {
	return &Service{api: client, creds: creds, log: log}
}

type UpdateInput struct {
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Update changes the mutable profile fields and refreshes the cached
// copy so the next startup paints the new values.
func (s *Service) Update(ctx context.Context, input UpdateInput) (models.User, error) {
	var user models.User
	if err := s.api.Put(ctx, "/users/me", input, &user); err != nil {
		return models.User{}, err
	}
	if err := s.creds.SetStoredUser(user); err != nil {
		s.log.Error().Err(err).Msg("cache user failed")
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	body := map[string]string{
		"old_password": oldPassword,
		"new_password": newPassword,
	}
	return s.api.Put(ctx, "/users/me/password", body, nil)
}

func (s *Service) Addresses(ctx context.Context) ([]models.Address, error) {
	var addresses []models.Address
	if err := s.api.Get(ctx, "/users/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

type AddressInput struct {
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	DetailAddress string `json:"detail_address"`
	IsDefault     bool   `json:"is_default,omitempty"`
}

func (s *Service) CreateAddress(ctx context.Context, input AddressInput) (models.Address, error) {
	var address models.Address
	if err := s.api.Post(ctx, "/users/addresses", input, &address); err != nil {
		return models.Address{}, err
	}
	return address, nil
}

func (s *Service) UpdateAddress(ctx context.Context, id int64, input AddressInput) (models.Address, error) {
	var address models.Address
	if err := s.api.Put(ctx, fmt.Sprintf("/users/addresses/%d", id), input, &address); err != nil {
		return models.Address{}, err
	}
	return address, nil
}

func (s *Service) DeleteAddress(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("/users/addresses/%d", id))
}

// ToggleFavorite flips favorite status and reports the new state.
func (s *Service) ToggleFavorite(ctx context.Context, productID int64) (bool, error) {
	var data struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := s.api.Post(ctx, fmt.Sprintf("/favorites/%d", productID), nil, &data); err != nil {
		return false, err
	}
	return data.IsFavorite, nil
}

func (s *Service) Favorites(ctx context.Context) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := s.api.Get(ctx, "/favorites", nil, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}

func (s *Service) IsFavorite(ctx context.Context, productID int64) (bool, error) {
	var data struct {
		IsFavorite bool `json:"is_favorite"`
	}
	if err := s.api.Get(ctx, fmt.Sprintf("/favorites/%d/check", productID), nil, &data); err != nil {
		return false, err
	}
	return data.IsFavorite, nil
}
