package models_test

import (
	"context"
	"testing"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupModelsTest(t *testing.T) context.Context {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	config.SetDB(db)

	org := models.Organization{Name: "Ferretería El Norte"}
	require.NoError(t, db.Create(&org).Error)

	ctx := context.Background()
	ctx = utils.SetOrganizationIdInContext(ctx, org.ID)
	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetIsOrgAdminInContext(ctx, true)
	return ctx
}
