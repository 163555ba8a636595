package models

import (
	"errors"
	"strings"
	"time"
)

// PartCategory groups spare parts
type PartCategory string

const (
	CategoryEngine      PartCategory = "Engine"
	CategoryElectrical  PartCategory = "Electrical"
	CategoryBody        PartCategory = "Body"
	CategorySuspension  PartCategory = "Suspension"
	CategoryBrakes      PartCategory = "Brakes"
	CategoryAccessories PartCategory = "Accessories"
)

// StockAction is the direction of a stock adjustment
type StockAction string

const (
	StockAdd      StockAction = "add"
	StockSubtract StockAction = "subtract"
)

// Supplier holds who a part is ordered from
type Supplier struct {
	Name         string `json:"name,omitempty"`
	Contact      string `json:"contact,omitempty"`
	LeadTimeDays int    `json:"lead_time_days,omitempty"`
}

// Part represents a spare part kept in inventory
type Part struct {
	ID                   int          `json:"id" db:"id"`
	PartNumber           string       `json:"part_number" db:"part_number"`
	Name                 string       `json:"name" db:"name"`
	Description          string       `json:"description,omitempty" db:"description"`
	CompatibleVehicleIDs []int64      `json:"compatible_vehicle_ids" db:"compatible_vehicle_ids"`
	Category             PartCategory `json:"category" db:"category"`
	Price                float64      `json:"price" db:"price"`
	Cost                 float64      `json:"cost" db:"cost"`
	Stock                int          `json:"stock" db:"stock"`
	MinStockLevel        int          `json:"min_stock_level" db:"min_stock_level"`
	Supplier             Supplier     `json:"supplier"`
	LastOrdered          *time.Time   `json:"last_ordered,omitempty" db:"last_ordered"`
	NextOrderDate        *time.Time   `json:"next_order_date,omitempty" db:"next_order_date"`
	CreatedAt            time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at" db:"updated_at"`
}

// PartCreate represents part creation data
type PartCreate struct {
	PartNumber           string       `json:"part_number"`
	Name                 string       `json:"name"`
	Description          string       `json:"description,omitempty"`
	CompatibleVehicleIDs []int64      `json:"compatible_vehicle_ids,omitempty"`
	Category             PartCategory `json:"category"`
	Price                float64      `json:"price"`
	Cost                 float64      `json:"cost"`
	Stock                int          `json:"stock"`
	MinStockLevel        int          `json:"min_stock_level"`
	Supplier             Supplier     `json:"supplier"`
}

// PartUpdate carries a partial update
type PartUpdate struct {
	Name                 *string       `json:"name,omitempty"`
	Description          *string       `json:"description,omitempty"`
	CompatibleVehicleIDs []int64       `json:"compatible_vehicle_ids,omitempty"`
	Category             *PartCategory `json:"category,omitempty"`
	Price                *float64      `json:"price,omitempty"`
	Cost                 *float64      `json:"cost,omitempty"`
	MinStockLevel        *int          `json:"min_stock_level,omitempty"`
	Supplier             *Supplier     `json:"supplier,omitempty"`
}

// StockAdjustment represents a stock movement request
type StockAdjustment struct {
	Action   StockAction `json:"action"`
	Quantity int         `json:"quantity"`
}

// PartFilter narrows a parts listing
type PartFilter struct {
	Category PartCategory
	LowStock bool
	Search   string
}

// Validate validates part creation data
func (p *PartCreate) Validate() error {
	p.PartNumber = strings.TrimSpace(p.PartNumber)
	p.Name = strings.TrimSpace(p.Name)

	if p.PartNumber == "" || p.Name == "" {
		return errors.New("part number and name are required")
	}
	if !p.Category.Valid() {
		return errors.New("category must be Engine, Electrical, Body, Suspension, Brakes or Accessories")
	}
	if p.Stock < 0 {
		return errors.New("stock cannot be negative")
	}
	return validatePartAmounts(p.Price, p.Cost, p.MinStockLevel, p.Supplier)
}

// ToPart converts PartCreate to Part
func (p *PartCreate) ToPart() *Part {
	return &Part{
		PartNumber:           p.PartNumber,
		Name:                 p.Name,
		Description:          p.Description,
		CompatibleVehicleIDs: p.CompatibleVehicleIDs,
		Category:             p.Category,
		Price:                p.Price,
		Cost:                 p.Cost,
		Stock:                p.Stock,
		MinStockLevel:        p.MinStockLevel,
		Supplier:             p.Supplier,
	}
}

// Apply copies the set fields onto part
func (u *PartUpdate) Apply(part *Part) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errors.New("name is required")
		}
		part.Name = name
	}
	if u.Description != nil {
		part.Description = *u.Description
	}
	if u.CompatibleVehicleIDs != nil {
		part.CompatibleVehicleIDs = u.CompatibleVehicleIDs
	}
	if u.Category != nil {
		if !u.Category.Valid() {
			return errors.New("unknown category")
		}
		part.Category = *u.Category
	}
	if u.Price != nil {
		part.Price = *u.Price
	}
	if u.Cost != nil {
		part.Cost = *u.Cost
	}
	if u.MinStockLevel != nil {
		part.MinStockLevel = *u.MinStockLevel
	}
	if u.Supplier != nil {
		part.Supplier = *u.Supplier
	}
	return validatePartAmounts(part.Price, part.Cost, part.MinStockLevel, part.Supplier)
}

// Validate validates a stock adjustment
func (a *StockAdjustment) Validate() error {
	if a.Action != StockAdd && a.Action != StockSubtract {
		return errors.New("action must be add or subtract")
	}
	if a.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	return nil
}

// IsLowStock reports whether the part is below its minimum level
func (p *Part) IsLowStock() bool {
	return p.Stock < p.MinStockLevel
}

// RefreshReorderDate sets the next order date when stock is low and clears it otherwise
func (p *Part) RefreshReorderDate(now time.Time, defaultLeadTimeDays int) {
	if !p.IsLowStock() {
		p.NextOrderDate = nil
		return
	}

	leadTime := p.Supplier.LeadTimeDays
	if leadTime <= 0 {
		leadTime = defaultLeadTimeDays
	}
	next := now.AddDate(0, 0, leadTime)
	p.NextOrderDate = &next
}

// ApplyStock applies an adjustment. Subtracting never takes stock below zero and
// adding records the delivery time as the last order.
func (p *Part) ApplyStock(adj StockAdjustment, now time.Time) {
	switch adj.Action {
	case StockAdd:
		p.Stock += adj.Quantity
		p.LastOrdered = &now
	case StockSubtract:
		p.Stock -= adj.Quantity
		if p.Stock < 0 {
			p.Stock = 0
		}
	}
}

// Valid reports whether c is a known category
func (c PartCategory) Valid() bool {
	switch c {
	case CategoryEngine, CategoryElectrical, CategoryBody, CategorySuspension, CategoryBrakes, CategoryAccessories:
		return true
	}
	return false
}

func validatePartAmounts(price, cost float64, minStock int, supplier Supplier) error {
	if price < 0 || cost < 0 {
		return errors.New("price and cost cannot be negative")
	}
	if minStock < 0 {
		return errors.New("min stock level cannot be negative")
	}
	if supplier.LeadTimeDays < 0 {
		return errors.New("lead time cannot be negative")
	}
	return nil
}
