package entity

import "time"

// Supplier proveedor de material. Solo lectura para el motor.
type Supplier struct {
	ID             string
	FirstName      string
	LastName       string
	DocumentNumber string
	Phone          string
	Email          string
	Active         bool
	CreatedAt      time.Time
}

// FullName nombre completo del proveedor.
func (s *Supplier) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
