package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealership-service/internal/models"
)

func TestCustomerSvc_CreateAndUpdate(t *testing.T) {
	env := newTestEnv()
	svc := NewCustomerService(env.deps)
	ctx := context.Background()

	customer, err := svc.Create(ctx, &models.CustomerCreate{
		Name:    "  Meera Iyer ",
		Contact: models.Contact{Phone: "9988776655", Email: "Meera@Example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera Iyer", customer.Name)
	assert.Equal(t, "meera@example.com", customer.Contact.Email)
	assert.Equal(t, models.InterestNew, customer.Interest.Status)
	assert.Empty(t, customer.Visits)

	updated, err := svc.Update(ctx, customer.ID, &models.CustomerUpdate{
		Interest: &models.Interest{Status: models.InterestTestDrive, Notes: "weekend slot"},
		Visit:    &models.Visit{Purpose: "Test ride", Outcome: "Positive"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.InterestTestDrive, updated.Interest.Status)
	require.Len(t, updated.Visits, 1)
	assert.Equal(t, fixedNow, updated.Visits[0].Date)
	assert.Equal(t, customer.ID, updated.Visits[0].CustomerID)

	stored, err := svc.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Visits, 1)
}

func TestCustomerSvc_Errors(t *testing.T) {
	env := newTestEnv()
	svc := NewCustomerService(env.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.CustomerCreate{Name: "Bad Phone", Contact: models.Contact{Phone: "12345"}})
	assert.ErrorIs(t, err, ErrValidation)

	missingVehicle := 404
	_, err = svc.Create(ctx, &models.CustomerCreate{
		Name:     "Ghost Bike",
		Contact:  models.Contact{Phone: "9988776655"},
		Interest: &models.Interest{VehicleID: &missingVehicle, Status: models.InterestNew},
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "vehicle not found")

	_, err = svc.Update(ctx, 999, &models.CustomerUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.List(ctx, models.CustomerFilter{Status: "Bored"})
	assert.ErrorIs(t, err, ErrValidation)

	assert.ErrorIs(t, svc.Delete(ctx, 999), ErrNotFound)
}

func TestVehicleSvc_CRUD(t *testing.T) {
	env := newTestEnv()
	svc := NewVehicleService(env.deps)
	ctx := context.Background()

	vehicle, err := svc.Create(ctx, &models.VehicleCreate{
		Model:   "Himalayan",
		Variant: "450",
		Price:   2850,
		Specs: models.VehicleSpecs{
			Engine:       "452cc",
			Mileage:      "30 kmpl",
			Power:        "40 PS",
			Transmission: models.TransmissionManual,
			FuelType:     models.FuelPetrol,
		},
		Stock: 3,
	})
	require.NoError(t, err)
	assert.NotZero(t, vehicle.ID)

	price := 2999.0
	updated, err := svc.Update(ctx, vehicle.ID, &models.VehicleUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 2999.0, updated.Price)
	assert.Equal(t, "Himalayan", updated.Model)

	negative := -1
	_, err = svc.Update(ctx, vehicle.ID, &models.VehicleUpdate{Stock: &negative})
	assert.ErrorIs(t, err, ErrValidation)

	vehicles, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, vehicles, 1)

	require.NoError(t, svc.Delete(ctx, vehicle.ID))
	_, err = svc.GetByID(ctx, vehicle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
