package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Transmission defines the gearbox of a vehicle
type Transmission string

const (
	TransmissionManual    Transmission = "Manual"
	TransmissionAutomatic Transmission = "Automatic"
)

// FuelType defines what a vehicle runs on
type FuelType string

const (
	FuelPetrol   FuelType = "Petrol"
	FuelDiesel   FuelType = "Diesel"
	FuelElectric FuelType = "Electric"
	FuelHybrid   FuelType = "Hybrid"
)

var imageURLPattern = regexp.MustCompile(`^(https?://).+\.(jpg|jpeg|png|webp)$`)

// VehicleSpecs holds the technical details of a vehicle
type VehicleSpecs struct {
	Engine       string       `json:"engine"`
	Mileage      string       `json:"mileage"`
	Power        string       `json:"power"`
	Transmission Transmission `json:"transmission"`
	FuelType     FuelType     `json:"fuel_type"`
	Colors       []string     `json:"colors"`
}

// Vehicle represents a vehicle in the showroom catalogue
type Vehicle struct {
	ID        int          `json:"id" db:"id"`
	Model     string       `json:"model" db:"model"`
	Variant   string       `json:"variant" db:"variant"`
	Price     float64      `json:"price" db:"price"`
	Specs     VehicleSpecs `json:"specs"`
	ImageURL  string       `json:"image_url,omitempty" db:"image_url"`
	Stock     int          `json:"stock" db:"stock"`
	Featured  bool         `json:"featured" db:"featured"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// VehicleSummary is the short form embedded in quotes
type VehicleSummary struct {
	ID       int     `json:"id"`
	Model    string  `json:"model"`
	Variant  string  `json:"variant"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
}

// VehicleCreate represents vehicle creation data
type VehicleCreate struct {
	Model    string       `json:"model"`
	Variant  string       `json:"variant"`
	Price    float64      `json:"price"`
	Specs    VehicleSpecs `json:"specs"`
	ImageURL string       `json:"image_url,omitempty"`
	Stock    int          `json:"stock"`
	Featured bool         `json:"featured"`
}

// VehicleUpdate carries the fields of a partial update; nil fields are left alone
type VehicleUpdate struct {
	Model    *string       `json:"model,omitempty"`
	Variant  *string       `json:"variant,omitempty"`
	Price    *float64      `json:"price,omitempty"`
	Specs    *VehicleSpecs `json:"specs,omitempty"`
	ImageURL *string       `json:"image_url,omitempty"`
	Stock    *int          `json:"stock,omitempty"`
	Featured *bool         `json:"featured,omitempty"`
}

// Validate validates vehicle creation data
func (v *VehicleCreate) Validate() error {
	v.Model = strings.TrimSpace(v.Model)
	v.Variant = strings.TrimSpace(v.Variant)

	if v.Model == "" || v.Variant == "" {
		return errors.New("model and variant are required")
	}
	return validateVehicleFields(v.Price, v.Stock, v.ImageURL, v.Specs)
}

// ToVehicle converts VehicleCreate to Vehicle
func (v *VehicleCreate) ToVehicle() *Vehicle {
	return &Vehicle{
		Model:    v.Model,
		Variant:  v.Variant,
		Price:    v.Price,
		Specs:    v.Specs,
		ImageURL: v.ImageURL,
		Stock:    v.Stock,
		Featured: v.Featured,
	}
}

// Apply copies the set fields onto vehicle and revalidates the result
func (u *VehicleUpdate) Apply(vehicle *Vehicle) error {
	if u.Model != nil {
		vehicle.Model = strings.TrimSpace(*u.Model)
	}
	if u.Variant != nil {
		vehicle.Variant = strings.TrimSpace(*u.Variant)
	}
	if u.Price != nil {
		vehicle.Price = *u.Price
	}
	if u.Specs != nil {
		vehicle.Specs = *u.Specs
	}
	if u.ImageURL != nil {
		vehicle.ImageURL = *u.ImageURL
	}
	if u.Stock != nil {
		vehicle.Stock = *u.Stock
	}
	if u.Featured != nil {
		vehicle.Featured = *u.Featured
	}

	if vehicle.Model == "" || vehicle.Variant == "" {
		return errors.New("model and variant are required")
	}
	return validateVehicleFields(vehicle.Price, vehicle.Stock, vehicle.ImageURL, vehicle.Specs)
}

// Summary returns the short form of the vehicle
func (v *Vehicle) Summary() VehicleSummary {
	return VehicleSummary{
		ID:       v.ID,
		Model:    v.Model,
		Variant:  v.Variant,
		Price:    v.Price,
		ImageURL: v.ImageURL,
	}
}

func validateVehicleFields(price float64, stock int, imageURL string, specs VehicleSpecs) error {
	if price < 0 {
		return errors.New("price cannot be negative")
	}
	if stock < 0 {
		return errors.New("stock cannot be negative")
	}
	if imageURL != "" && !imageURLPattern.MatchString(imageURL) {
		return errors.New("image url must be an http(s) link to a jpg, jpeg, png or webp file")
	}
	if specs.Engine == "" || specs.Mileage == "" || specs.Power == "" {
		return errors.New("engine, mileage and power are required")
	}

	switch specs.Transmission {
	case TransmissionManual, TransmissionAutomatic:
	default:
		return errors.New("transmission must be Manual or Automatic")
	}

	switch specs.FuelType {
	case FuelPetrol, FuelDiesel, FuelElectric, FuelHybrid:
	default:
		return errors.New("fuel type must be Petrol, Diesel, Electric or Hybrid")
	}

	if len(specs.Colors) == 0 {
		return errors.New("at least one color is required")
	}
	return nil
}
