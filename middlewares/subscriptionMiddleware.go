package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/norteapps/cartera_backend/models"
	"github.com/norteapps/cartera_backend/utils"
)

// SubscriptionMiddleware blocks organizations whose trial ran out and whose
// subscription is no longer active. Auth endpoints and the subscription
// endpoints themselves stay outside this middleware so an expired tenant can
// still log in and reactivate.
func SubscriptionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
		if !ok || organizationId <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		subscription, err := models.GetSubscription(ctx, organizationId)
		if err != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "no subscription found for organization"})
			c.Abort()
			return
		}
		if !subscription.Active(time.Now().UTC()) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "subscription expired"})
			c.Abort()
			return
		}
		c.Next()
	}
}
