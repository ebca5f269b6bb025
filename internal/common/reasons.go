package common

import "strings"

// ReasonsError is an error of a given kind (one of the sentinels above)
// carrying the individual human-readable reasons that produced it.
//
//	err := common.NewReasonsError(common.ErrValidation, "password too short")
//	errors.Is(err, common.ErrValidation) // true
type ReasonsError struct {
	Kind    error
	Reasons []string
}

func NewReasonsError(kind error, reasons ...string) *ReasonsError {
	return &ReasonsError{Kind: kind, Reasons: reasons}
}

func (e *ReasonsError) Error() string {
	if len(e.Reasons) == 0 {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + strings.Join(e.Reasons, "; ")
}

func (e *ReasonsError) Unwrap() error {
	return e.Kind
}
