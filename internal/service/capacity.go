// Package service holds the console-side business rules that run before a
// request is forwarded to the backend. There is exactly one today: a batch
// must fit in its target building's remaining capacity.
package service

import (
	"context"
	"fmt"

	"djajbladi-console/internal/model"
)

// buildingReader is the slice of the backend client the validator needs.
type buildingReader interface {
	Building(ctx context.Context, token string, id int64) (model.Building, error)
	Batches(ctx context.Context, token string) ([]model.Batch, error)
}

// CapacityError rejects a batch that would overflow its building. All the
// numbers a user needs to fix the request are carried along.
type CapacityError struct {
	BuildingName     string
	MaxCapacity      int
	CurrentOccupancy int
	Available        int
	Requested        int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf(
		"building %q is over capacity: max %d, currently housing %d, %d places left, %d requested",
		e.BuildingName, e.MaxCapacity, e.CurrentOccupancy, e.Available, e.Requested,
	)
}

type CapacityValidator struct {
	backend buildingReader
}

func NewCapacityValidator(backend buildingReader) *CapacityValidator {
	return &CapacityValidator{backend: backend}
}

// Validate checks that proposed chickens fit in the building's remaining
// space. Occupancy is the sum of chicken counts over batches already
// assigned to the building; batches housed elsewhere or nowhere do not
// count. Backend failures propagate as plain errors, never as a
// CapacityError.
func (v *CapacityValidator) Validate(ctx context.Context, token string, buildingID int64, proposed int) error {
	building, err := v.backend.Building(ctx, token, buildingID)
	if err != nil {
		return fmt.Errorf("look up building %d: %w", buildingID, err)
	}

	batches, err := v.backend.Batches(ctx, token)
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}

	occupancy := 0
	for _, batch := range batches {
		if batch.BuildingID != nil && *batch.BuildingID == buildingID {
			occupancy += batch.ChickenCount
		}
	}

	available := building.MaxCapacity - occupancy
	if proposed > available {
		return &CapacityError{
			BuildingName:     building.Name,
			MaxCapacity:      building.MaxCapacity,
			CurrentOccupancy: occupancy,
			Available:        available,
			Requested:        proposed,
		}
	}

	return nil
}
