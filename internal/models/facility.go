package models

import "time"

// Facility is a physical or virtual site where sessions run. Facilities are
// shared infrastructure and not program-scoped themselves; pricing entries
// bind them to program-owned courses.
type Facility struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   string    `db:"address" json:"address,omitempty"`
	City      string    `db:"city" json:"city,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
