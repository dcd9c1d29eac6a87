package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/rm-hull/fleet-fuel-api/internal"
	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

const importBatchSize = 500

// Import pulls vehicles and fuel charges from the remote data service, or loads
// charges from a CSV export when csvPath is set.
func Import(dbPath, csvPath string) error {

	client, repo, err := bootstrap(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	if csvPath != "" {
		numCharges, err := importCSV(csvPath, repo)
		if err != nil {
			return err
		}
		log.Printf("imported %d fuel charges from %s", numCharges, csvPath)
		return nil
	}

	if client == nil {
		return errors.New("nothing to import: set DATA_SERVICE_URL or pass --csv")
	}

	numVehicles, err := client.GetVehicles(repo.InsertVehicles)
	if err != nil {
		return fmt.Errorf("failed to fetch vehicles: %w", err)
	}
	log.Printf("imported %d vehicles", numVehicles)

	numCharges, err := client.GetFuelCharges(repo.InsertCharges)
	if err != nil {
		return fmt.Errorf("failed to fetch fuel charges: %w", err)
	}
	log.Printf("imported %d fuel charges", numCharges)

	return nil
}

func importCSV(csvPath string, repo internal.FleetRepository) (int, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open %s", csvPath)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("failed to close %s: %v", csvPath, err)
		}
	}()

	count := 0
	batch := make([]models.FuelCharge, 0, importBatchSize)
	flush := func() error {
		n, err := repo.InsertCharges(batch)
		if err != nil {
			return err
		}
		count += n
		batch = batch[:0]
		return nil
	}

	for record := range internal.ParseCSV(f, true, models.FuelChargeFromCSV) {
		if record.Error != nil {
			return count, errors.Wrapf(record.Error, "failed to parse %s", csvPath)
		}
		batch = append(batch, *record.Value)
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}

	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}
