package mees

import "errors"

var (
	// ErrInvalidScenario is returned when a scenario tag is outside the closed set.
	ErrInvalidScenario = errors.New("mees: invalid scenario")
	// ErrMalformedUnit is returned when a unit carries a non-numeric rent.
	ErrMalformedUnit = errors.New("mees: malformed unit")
	// ErrInvalidRentParams is returned when uplift percentages are negative or not finite.
	ErrInvalidRentParams = errors.New("mees: invalid rent params")
	// ErrEmptyBuildingID is returned when a building id is empty.
	ErrEmptyBuildingID = errors.New("mees: empty building id")
	// ErrBuildingNotFound is returned when a building does not exist.
	ErrBuildingNotFound = errors.New("mees: building not found")
	// ErrReportNotFound is returned when a report does not exist.
	ErrReportNotFound = errors.New("mees: report not found")
	// ErrReportVoided is returned when freezing a voided report.
	ErrReportVoided = errors.New("mees: report is voided")
	// ErrNilReport is returned when saving a nil report.
	ErrNilReport = errors.New("mees: nil report")
)
