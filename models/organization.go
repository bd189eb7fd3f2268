package models

import (
	"context"
	"time"

	"github.com/norteapps/cartera_backend/config"
)

// Organization is the tenant boundary. Every other row carries its id and no
// query or write ever crosses it.
type Organization struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:200;not null" json:"name"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetOrganizationById(ctx context.Context, id int) (*Organization, error) {
	db := config.GetDB()
	var org Organization
	if err := db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
