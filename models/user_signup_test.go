package models_test

import (
	"testing"
	"time"

	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp_CreatesOrgAdminAndTrial(t *testing.T) {
	ctx := setupModelsTest(t)

	user, err := models.SignUp(ctx, &models.NewUser{
		Username:     "dueño",
		Password:     "correcthorse1",
		Email:        "dueno@elnorte.mx",
		Organization: "Ferretería El Norte II",
	})
	require.NoError(t, err)
	assert.True(t, utils.DereferencePtr(user.IsOrgAdmin))
	assert.NotEmpty(t, user.OrganizationId)

	sub, err := models.GetSubscription(ctx, user.OrganizationId)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	assert.True(t, sub.Active(time.Now()))

	// Usernames are global, not per organization.
	_, err = models.SignUp(ctx, &models.NewUser{
		Username:     "dueño",
		Password:     "correcthorse1",
		Organization: "Otra",
	})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	ctx := setupModelsTest(t)

	user, err := models.SignUp(ctx, &models.NewUser{
		Username:     "cajero",
		Password:     "correcthorse1",
		Organization: "Ferretería El Norte II",
	})
	require.NoError(t, err)

	token, loggedIn, err := models.Login(ctx, "cajero", "correcthorse1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := utils.JwtValidate(token)
	require.NoError(t, err)
	custom, ok := claims.Claims.(*utils.JwtCustomClaim)
	require.True(t, ok)
	assert.Equal(t, user.OrganizationId, custom.OrganizationId)

	_, _, err = models.Login(ctx, "cajero", "wrong password")
	require.Error(t, err)
	_, _, err = models.Login(ctx, "nadie", "correcthorse1")
	require.ErrorIs(t, err, utils.ErrorRecordNotFound)
}
