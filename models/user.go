package models

import (
	"context"
	"errors"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"gorm.io/gorm"
)

type User struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId int       `gorm:"index;not null" json:"organization_id"`
	Username       string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Email          string    `gorm:"size:255" json:"email"`
	IsOrgAdmin     *bool     `gorm:"not null;default:false" json:"is_org_admin"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required,min=8"`
	Email        string `json:"email"`
	Organization string `json:"organization" binding:"required"`
}

// SignUp creates an organization, its first (admin) user, and the trial
// subscription in one transaction.
func SignUp(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email")
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user User
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errors.New("username already taken")
		}

		org := Organization{Name: input.Organization, IsActive: utils.NewTrue()}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		user = User{
			OrganizationId: org.ID,
			Username:       input.Username,
			PasswordHash:   string(hash),
			Email:          input.Email,
			IsOrgAdmin:     utils.NewTrue(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		_, err := CreateTrialSubscription(tx, org.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies credentials and issues a JWT carrying the user's
// organization scope.
func Login(ctx context.Context, username string, password string) (string, *User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return "", nil, utils.ErrorRecordNotFound
	}
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return "", nil, errors.New("invalid credentials")
	}
	token, err := utils.JwtGenerate(user.ID, user.OrganizationId, utils.DereferencePtr(user.IsOrgAdmin))
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func GetUserById(ctx context.Context, id int) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}
