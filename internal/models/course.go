package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// LocationType classifies where a session takes place.
type LocationType string

const (
	LocationOurFacility    LocationType = "our-facility"
	LocationClientLocation LocationType = "client-location"
	LocationVirtual        LocationType = "virtual"
)

// Valid reports whether the location type is a known member.
func (t LocationType) Valid() bool {
	switch t {
	case LocationOurFacility, LocationClientLocation, LocationVirtual:
		return true
	}
	return false
}

// LocationTypeList is stored as a Postgres text array.
type LocationTypeList []LocationType

// Value implements driver.Valuer.
func (l LocationTypeList) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(l))
	for i, t := range l {
		arr[i] = string(t)
	}
	return arr.Value()
}

// Scan implements sql.Scanner.
func (l *LocationTypeList) Scan(src interface{}) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	out := make(LocationTypeList, len(arr))
	for i, s := range arr {
		out[i] = LocationType(s)
	}
	*l = out
	return nil
}

// Contains reports membership.
func (l LocationTypeList) Contains(t LocationType) bool {
	for _, v := range l {
		if v == t {
			return true
		}
	}
	return false
}

// AgeGroup is a validated course configuration record. Age group sets are
// small, so id lookup stays a linear scan over the loaded list.
type AgeGroup struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	MinAge int    `json:"min_age"`
	MaxAge int    `json:"max_age"`
}

// AgeGroupList is stored as a JSONB column.
type AgeGroupList []AgeGroup

// Value implements driver.Valuer.
func (l AgeGroupList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *AgeGroupList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// ByID returns the age group with the given id.
func (l AgeGroupList) ByID(id string) (AgeGroup, bool) {
	for _, g := range l {
		if g.ID == id {
			return g, true
		}
	}
	return AgeGroup{}, false
}

// SessionType is a validated course configuration record (e.g. private,
// group, school_group).
type SessionType struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	MaxParticipants int    `json:"max_participants,omitempty"`
}

// SessionTypeList is stored as a JSONB column.
type SessionTypeList []SessionType

// Value implements driver.Valuer.
func (l SessionTypeList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *SessionTypeList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// ByID returns the session type with the given id.
func (l SessionTypeList) ByID(id string) (SessionType, bool) {
	for _, s := range l {
		if s.ID == id {
			return s, true
		}
	}
	return SessionType{}, false
}

// Course belongs to a program and carries the classification axes that,
// together with a facility, determine pricing.
type Course struct {
	ID            string           `db:"id" json:"id"`
	ProgramID     string           `db:"program_id" json:"program_id"`
	Name          string           `db:"name" json:"name"`
	Description   string           `db:"description" json:"description,omitempty"`
	AgeGroups     AgeGroupList     `db:"age_groups" json:"age_groups"`
	SessionTypes  SessionTypeList  `db:"session_types" json:"session_types"`
	LocationTypes LocationTypeList `db:"location_types" json:"location_types"`
	BasePriceMin  int64            `db:"base_price_min" json:"base_price_min"`
	BasePriceMax  int64            `db:"base_price_max" json:"base_price_max"`
	Active        bool             `db:"active" json:"active"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}

func scanJSON(src, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported scan source %T", src)
	}
}
