package config_test

import (
	"context"
	"testing"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type guardedRow struct {
	ID             int
	OrganizationId int
	Name           string
}

type openRow struct {
	ID   int
	Name string
}

func setupGuardTest(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&guardedRow{}, &openRow{}))
	require.NoError(t, db.Use(config.NewTenantGuardPlugin()))

	require.NoError(t, db.Create(&guardedRow{OrganizationId: 1, Name: "propia"}).Error)
	require.NoError(t, db.Create(&guardedRow{OrganizationId: 2, Name: "ajena"}).Error)
	require.NoError(t, db.Create(&openRow{Name: "libre"}).Error)
	return db
}

func TestTenantGuard_ScopesQueriesToContextOrganization(t *testing.T) {
	db := setupGuardTest(t)
	ctx := utils.SetOrganizationIdInContext(context.Background(), 1)

	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "propia", rows[0].Name)

	// First on another tenant's row comes back not-found, not leaked.
	var foreign guardedRow
	err := db.WithContext(ctx).Where("name = ?", "ajena").First(&foreign).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestTenantGuard_LeavesUnscopedFlowsAlone(t *testing.T) {
	db := setupGuardTest(t)

	// Without an organization in context (login, signup, cmd/ tools) the
	// guard stays out of the way.
	var rows []guardedRow
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)
	assert.Len(t, rows, 2)

	// Models without an organization_id column are never touched.
	ctx := utils.SetOrganizationIdInContext(context.Background(), 1)
	var open []openRow
	require.NoError(t, db.WithContext(ctx).Find(&open).Error)
	assert.Len(t, open, 1)
}

func TestTenantGuard_KeepsExplicitTenantFilter(t *testing.T) {
	db := setupGuardTest(t)
	ctx := utils.SetOrganizationIdInContext(context.Background(), 1)

	// An explicit organization_id clause is not doubled up with the
	// context's value.
	var rows []guardedRow
	require.NoError(t, db.WithContext(ctx).
		Where("organization_id = ?", 2).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "ajena", rows[0].Name)
}

func TestTenantGuard_ScopesUpdatesAndDeletes(t *testing.T) {
	db := setupGuardTest(t)
	ctx := utils.SetOrganizationIdInContext(context.Background(), 1)

	res := db.WithContext(ctx).Model(&guardedRow{}).
		Where("name IN ?", []string{"propia", "ajena"}).
		Update("name", "tocada")
	require.NoError(t, res.Error)
	assert.EqualValues(t, 1, res.RowsAffected)

	res = db.WithContext(ctx).Where("name IN ?", []string{"tocada", "ajena"}).
		Delete(&guardedRow{})
	require.NoError(t, res.Error)
	assert.EqualValues(t, 1, res.RowsAffected)

	var survivors []guardedRow
	require.NoError(t, db.Find(&survivors).Error)
	require.Len(t, survivors, 1)
	assert.Equal(t, 2, survivors[0].OrganizationId)
}
