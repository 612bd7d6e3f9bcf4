package mees

import "strings"

// Rating is an Energy Performance Certificate band.
type Rating string

const (
	RatingA       Rating = "A"
	RatingB       Rating = "B"
	RatingC       Rating = "C"
	RatingD       Rating = "D"
	RatingE       Rating = "E"
	RatingF       Rating = "F"
	RatingG       Rating = "G"
	RatingUnknown Rating = "Unknown"
)

// LetterRatings lists the lettered bands from best to worst.
var LetterRatings = []Rating{RatingA, RatingB, RatingC, RatingD, RatingE, RatingF, RatingG}

// ParseRating normalizes a stored or submitted rating. Anything outside A..G
// (including empty) is Unknown so that it is assessed as worst case.
func ParseRating(value string) Rating {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	switch Rating(normalized) {
	case RatingA, RatingB, RatingC, RatingD, RatingE, RatingF, RatingG:
		return Rating(normalized)
	default:
		return RatingUnknown
	}
}

// Normalize maps an out-of-range value onto Unknown.
func (r Rating) Normalize() Rating {
	return ParseRating(string(r))
}

// IsLetter reports whether the rating is one of A..G.
func (r Rating) IsLetter() bool {
	return r.Normalize() != RatingUnknown
}

// FailsMEES2027 reports whether a unit with this rating is below EPC C.
func (r Rating) FailsMEES2027() bool {
	switch r.Normalize() {
	case RatingA, RatingB, RatingC:
		return false
	default:
		return true
	}
}

// FailsMEES2030 reports whether a unit with this rating is below EPC B.
func (r Rating) FailsMEES2030() bool {
	switch r.Normalize() {
	case RatingA, RatingB:
		return false
	default:
		return true
	}
}

// Color returns the display colour of a lettered band.
func (r Rating) Color() string {
	switch r.Normalize() {
	case RatingA:
		return "#008054"
	case RatingB:
		return "#19b459"
	case RatingC:
		return "#8dce46"
	case RatingD:
		return "#ffd500"
	case RatingE:
		return "#fcaa65"
	case RatingF:
		return "#ef8023"
	case RatingG:
		return "#e9153b"
	default:
		return "#9e9e9e"
	}
}
