package main

import (
	"context"
	"errors"

	"vidtube/models"
	"vidtube/pkg/token"

	"gorm.io/gorm"
)

// gormCredentials adapts the users table to the token service's credential
// store contract. The refresh_token column is written through this type
// only, and only by the token service.
type gormCredentials struct {
	db *gorm.DB
}

func (s *gormCredentials) FindByID(ctx context.Context, id uint) (*token.Credential, error) {
	var u models.User
	err := s.db.WithContext(ctx).Select("id", "username", "refresh_token").First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token.Credential{ID: u.ID, Username: u.Username, RefreshToken: u.RefreshToken}, nil
}

func (s *gormCredentials) UpdateRefreshToken(ctx context.Context, id uint, value string) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", value).Error
}
