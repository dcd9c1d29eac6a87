package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/rm-hull/godx"

	"github.com/rm-hull/fleet-fuel-api/internal"
)

// bootstrap initialises shared resources used by both the API server and import
// commands. The client is nil when no data service URL is configured, in which
// case only locally stored records are served.
func bootstrap(dbPath string) (internal.DataServiceClient, internal.FleetRepository, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	var client internal.DataServiceClient
	if baseUrl := os.Getenv("DATA_SERVICE_URL"); baseUrl != "" {
		var err error
		client, err = internal.NewDataServiceClient(baseUrl, os.Getenv("DATA_SERVICE_KEY"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create data service client: %w", err)
		}
	} else {
		log.Println("WARNING: DATA_SERVICE_URL is not set, remote sync is disabled")
	}

	db, err := internal.Connect(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := internal.Migrate("migrations", dbPath); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate SQL: %w", err)
	}

	repo := internal.NewFleetRepository(db)

	return client, repo, nil
}
