// process-due-subscriptions expires trials past their end date and active
// subscriptions past their paid period. Run it once a day from the scheduler.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/process-due-subscriptions
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/norteapps/cartera_backend/config"
	"github.com/norteapps/cartera_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	expired, err := models.ExpireDueSubscriptions(ctx, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to expire due subscriptions: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Expired %d subscription(s)\n", expired)
}
