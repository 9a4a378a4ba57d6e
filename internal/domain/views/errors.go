package views

import "errors"

// Sentinel kinds for view errors. Every one of them is a user input problem.
var (
	ErrUnknownView      = errors.New("unknown view")
	ErrYearOutOfRange   = errors.New("year out of range")
	ErrInvalidYearRange = errors.New("invalid year range")
	ErrUnknownCategory  = errors.New("unknown category")
)

// IsValidation reports whether err came from bad view parameters.
func IsValidation(err error) bool {
	return Reason(err) != ""
}

// Reason returns a short label for metrics, or "" for other errors.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnknownView):
		return "unknown_view"
	case errors.Is(err, ErrYearOutOfRange):
		return "year_out_of_range"
	case errors.Is(err, ErrInvalidYearRange):
		return "invalid_year_range"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	default:
		return ""
	}
}

// Message returns the text shown to users in place of a result.
func Message(err error) string {
	if errors.Is(err, ErrInvalidYearRange) {
		return MsgInvalidYearRange
	}
	return err.Error()
}
