package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// InterestStatus tracks where a customer is in the sales funnel
type InterestStatus string

const (
	InterestNew                InterestStatus = "New"
	InterestContacted          InterestStatus = "Contacted"
	InterestTestDrive          InterestStatus = "Test Drive"
	InterestNegotiation        InterestStatus = "Negotiation"
	InterestPurchased          InterestStatus = "Purchased"
	InterestLost               InterestStatus = "Lost"
	InterestFinanceApplication InterestStatus = "Finance Application"
)

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Contact holds phone and email
type Contact struct {
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Address represents a postal address
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// Interest records which vehicle a customer is looking at
type Interest struct {
	VehicleID *int           `json:"vehicle_id,omitempty"`
	Status    InterestStatus `json:"status"`
	Notes     string         `json:"notes,omitempty"`
}

// Visit is one showroom visit
type Visit struct {
	ID           int        `json:"id" db:"id"`
	CustomerID   int        `json:"customer_id" db:"customer_id"`
	Date         time.Time  `json:"date" db:"visit_date"`
	Purpose      string     `json:"purpose,omitempty" db:"purpose"`
	Outcome      string     `json:"outcome,omitempty" db:"outcome"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty" db:"follow_up_date"`
}

// Customer represents a prospective or existing buyer
type Customer struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Contact   Contact   `json:"contact"`
	Address   Address   `json:"address"`
	Interest  Interest  `json:"interest"`
	Visits    []Visit   `json:"visits"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerSummary is the short form embedded in quotes
type CustomerSummary struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Contact Contact `json:"contact"`
}

// CustomerCreate represents customer creation data
type CustomerCreate struct {
	Name     string    `json:"name"`
	Contact  Contact   `json:"contact"`
	Address  Address   `json:"address"`
	Interest *Interest `json:"interest,omitempty"`
}

// CustomerUpdate carries a partial update. Visit, when set, is appended.
type CustomerUpdate struct {
	Name     *string   `json:"name,omitempty"`
	Contact  *Contact  `json:"contact,omitempty"`
	Address  *Address  `json:"address,omitempty"`
	Interest *Interest `json:"interest,omitempty"`
	Visit    *Visit    `json:"visit,omitempty"`
}

// CustomerFilter narrows a customer listing
type CustomerFilter struct {
	Status InterestStatus
	Search string
}

// Validate validates and normalizes customer creation data
func (c *CustomerCreate) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return errors.New("name is required")
	}
	if err := c.Contact.normalize(); err != nil {
		return err
	}
	if c.Interest != nil {
		return c.Interest.validate()
	}
	return nil
}

// ToCustomer converts CustomerCreate to Customer
func (c *CustomerCreate) ToCustomer() *Customer {
	interest := Interest{Status: InterestNew}
	if c.Interest != nil {
		interest = *c.Interest
	}
	return &Customer{
		Name:     c.Name,
		Contact:  c.Contact,
		Address:  c.Address,
		Interest: interest,
	}
}

// Apply copies the set fields onto customer. The visit, if any, is not
// appended here; the caller stores it separately.
func (u *CustomerUpdate) Apply(customer *Customer) error {
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return errors.New("name is required")
		}
		customer.Name = name
	}
	if u.Contact != nil {
		contact := *u.Contact
		if err := contact.normalize(); err != nil {
			return err
		}
		customer.Contact = contact
	}
	if u.Address != nil {
		customer.Address = *u.Address
	}
	if u.Interest != nil {
		if err := u.Interest.validate(); err != nil {
			return err
		}
		customer.Interest = *u.Interest
	}
	return nil
}

// Summary returns the short form of the customer
func (c *Customer) Summary() CustomerSummary {
	return CustomerSummary{ID: c.ID, Name: c.Name, Contact: c.Contact}
}

func (c *Contact) normalize() error {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))

	if !phonePattern.MatchString(c.Phone) {
		return errors.New("phone must be 10 digits")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return errors.New("invalid email format")
	}
	return nil
}

func (i *Interest) validate() error {
	if i.Status == "" {
		i.Status = InterestNew
	}
	if !i.Status.Valid() {
		return errors.New("unknown interest status")
	}
	return nil
}

// Valid reports whether s is a known interest status
func (s InterestStatus) Valid() bool {
	switch s {
	case InterestNew, InterestContacted, InterestTestDrive, InterestNegotiation,
		InterestPurchased, InterestLost, InterestFinanceApplication:
		return true
	}
	return false
}
