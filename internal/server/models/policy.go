package models

import "time"

// PolicyType is one of the fixed insurance categories offered by the system.
type PolicyType string

const (
	PolicyTypeHealth   PolicyType = "Health Insurance"
	PolicyTypeLife     PolicyType = "Life Insurance"
	PolicyTypeAuto     PolicyType = "Auto Insurance"
	PolicyTypeHome     PolicyType = "Home Insurance"
	PolicyTypeBusiness PolicyType = "Business Insurance"
)

// PolicyTypes returns the categories in their display order.
func PolicyTypes() []PolicyType {
	return []PolicyType{
		PolicyTypeHealth,
		PolicyTypeLife,
		PolicyTypeAuto,
		PolicyTypeHome,
		PolicyTypeBusiness,
	}
}

// Valid reports whether p is one of the fixed categories.
func (p PolicyType) Valid() bool {
	switch p {
	case PolicyTypeHealth, PolicyTypeLife, PolicyTypeAuto, PolicyTypeHome, PolicyTypeBusiness:
		return true
	}
	return false
}

// PolicyRecord is a single customer's insurance policy submission.
// ID is zero until the record store assigns one and immutable afterwards.
// StartDate and EndDate carry date-only values; any time component is
// ignored by validation and persistence.
type PolicyRecord struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	PolicyType   PolicyType
	PolicyNumber string
	StartDate    time.Time
	EndDate      time.Time
}
