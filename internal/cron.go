package internal

import (
	"log"

	"github.com/robfig/cron/v3"
)

const CRON_SCHEDULE_VEHICLES = "0 */6 * * *" // Every 6 hours
const CRON_SCHEDULE_CHARGES = "10 */1 * * *" // Every hour

// StartCron keeps the local store in step with the remote data service.
// Overlapping runs of the same job are skipped rather than queued.
func StartCron(client DataServiceClient, repo FleetRepository) (*cron.Cron, error) {

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	log.Print("starting CRON jobs to sync vehicles and fuel charges")

	if _, err := c.AddFunc(CRON_SCHEDULE_VEHICLES, func() { SyncVehicles(client, repo) }); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(CRON_SCHEDULE_CHARGES, func() { SyncCharges(client, repo) }); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

func SyncVehicles(client DataServiceClient, repo FleetRepository) {
	numVehicles, err := client.GetVehicles(repo.InsertVehicles)
	if err != nil {
		log.Printf("error fetching vehicles: %v", err)
		return
	}
	log.Printf("synced %d vehicles", numVehicles)
}

func SyncCharges(client DataServiceClient, repo FleetRepository) {
	numCharges, err := client.GetFuelCharges(repo.InsertCharges)
	if err != nil {
		log.Printf("error fetching fuel charges: %v", err)
		return
	}
	log.Printf("synced %d fuel charges", numCharges)
}
