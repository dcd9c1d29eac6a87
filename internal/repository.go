package internal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"

	"github.com/rm-hull/fleet-fuel-api/internal/models"
	"github.com/tavsec/gin-healthcheck/checks"
)

//go:embed sql/insert_vehicles.sql
var insertVehiclesSQL string

//go:embed sql/insert_charges.sql
var insertChargesSQL string

//go:embed sql/select_vehicles.sql
var selectVehiclesSQL string

//go:embed sql/select_charges.sql
var selectChargesSQL string

type FleetRepository interface {
	InsertVehicles(batch []models.Vehicle) (int, error)
	InsertCharges(batch []models.FuelCharge) (int, error)
	ListVehicles() ([]models.Vehicle, error)
	ListCharges(filter models.ChargeFilter) ([]models.FuelCharge, error)
	Check() checks.Check
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
}

func NewFleetRepository(db *sql.DB) FleetRepository {
	return &sqliteRepository{
		db: db,
	}
}

func (repo *sqliteRepository) Check() checks.Check {
	return checks.SqlCheck{Sql: repo.db}
}

func (repo *sqliteRepository) Close() error {
	return repo.db.Close()
}

func (repo *sqliteRepository) InsertVehicles(batch []models.Vehicle) (int, error) {
	return insertBatch(repo.db, insertVehiclesSQL, batch, func(v *models.Vehicle) []any {
		return v.ToTuple()
	})
}

func (repo *sqliteRepository) InsertCharges(batch []models.FuelCharge) (int, error) {
	return insertBatch(repo.db, insertChargesSQL, batch, func(fc *models.FuelCharge) []any {
		return fc.ToTuple()
	})
}

// insertBatch upserts the whole batch in a single transaction.
func insertBatch[T any](db *sql.DB, query string, batch []T, toTuple func(*T) []any) (count int, err error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("error rolling back transaction: %v", rbErr)
			}
		}
	}()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Printf("failed to close statement: %v", err)
		}
	}()

	for i := range batch {
		if _, err = stmt.Exec(toTuple(&batch[i])...); err != nil {
			return 0, fmt.Errorf("failed to execute individual insert: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return len(batch), nil
}

func (repo *sqliteRepository) ListVehicles() ([]models.Vehicle, error) {
	rows, err := repo.db.Query(selectVehiclesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vehicles query: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	vehicles := make([]models.Vehicle, 0)
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.Id, &v.Registration, &v.Name, &v.VehicleType); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		vehicles = append(vehicles, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return vehicles, nil
}

func (repo *sqliteRepository) ListCharges(filter models.ChargeFilter) ([]models.FuelCharge, error) {
	rows, err := repo.db.Query(selectChargesSQL, filter.VehicleId, filter.From.String(), filter.To.String())
	if err != nil {
		return nil, fmt.Errorf("failed to execute charges query: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	charges := make([]models.FuelCharge, 0)
	for rows.Next() {
		var (
			charge       models.FuelCharge
			purchaseDate string
			odometerKm   sql.NullFloat64
			liters       sql.NullFloat64
			amount       sql.NullFloat64
		)

		err := rows.Scan(
			&charge.Id,
			&charge.VehicleId,
			&charge.Category,
			&purchaseDate,
			&odometerKm,
			&liters,
			&amount,
			&charge.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if charge.PurchaseDate, err = models.ParseDate(purchaseDate); err != nil {
			return nil, fmt.Errorf("charge %s has a malformed purchase date: %w", charge.Id, err)
		}
		charge.OdometerKm = nullable(odometerKm)
		charge.Liters = nullable(liters)
		charge.Amount = nullable(amount)

		charges = append(charges, charge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	return charges, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
