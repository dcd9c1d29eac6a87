package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-hull/fleet-fuel-api/internal"
	"github.com/rm-hull/fleet-fuel-api/internal/consumption"
	"github.com/rm-hull/fleet-fuel-api/internal/models"
)

func setupRepo(t *testing.T) internal.FleetRepository {
	dbPath := filepath.Join(t.TempDir(), "fleet_fuel_test.db")

	db, err := internal.Connect(dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, internal.Migrate("../migrations", dbPath))

	repo := internal.NewFleetRepository(db)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func writeCSV(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "charges.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportCSVFeedsAnalysis(t *testing.T) {
	repo := setupRepo(t)
	path := writeCSV(t, `id,vehicle_id,category,purchase_date,odometer_km,liters,amount,description
c1,V1,fuel,2024-01-01,10000,40,72.5,
c2,V1,fuel,2024-01-10,10500,45,81,
c3,V1,toll,2024-01-05,,,12.4,A6
c4,V1,fuel,2024-01-05,10200,30,54,
`)

	count, err := importCSV(path, repo)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	charges, err := repo.ListCharges(models.ChargeFilter{VehicleId: "V1"})
	require.NoError(t, err)
	require.Len(t, charges, 4)

	summary := consumption.Analyze(charges)["V1"]
	require.NotNil(t, summary)
	require.Len(t, summary.OrderedIntervals, 2)
	assert.Equal(t, 15.0, *summary.AverageConsumptionRate)
}

func TestImportCSVInBatches(t *testing.T) {
	repo := setupRepo(t)

	var sb strings.Builder
	sb.WriteString("id,vehicle_id,category,purchase_date,odometer_km,liters\n")
	total := importBatchSize*2 + 7
	for i := 0; i < total; i++ {
		fmt.Fprintf(&sb, "c%d,V%d,fuel,2024-01-01,%d,40\n", i, i%3, 1000+i)
	}

	count, err := importCSV(writeCSV(t, sb.String()), repo)
	require.NoError(t, err)
	assert.Equal(t, total, count)

	charges, err := repo.ListCharges(models.ChargeFilter{})
	require.NoError(t, err)
	assert.Len(t, charges, total)
}

func TestImportCSVErrors(t *testing.T) {
	repo := setupRepo(t)

	_, err := importCSV(filepath.Join(t.TempDir(), "missing.csv"), repo)
	assert.Error(t, err)

	_, err = importCSV(writeCSV(t, "id,vehicle_id,category,purchase_date\nc1,V1,fuel,tomorrow\n"), repo)
	assert.ErrorContains(t, err, "purchase_date")
}
