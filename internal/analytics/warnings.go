package analytics

import "errors"

var (
	// ErrEmptyDataset indicates that a snapshot holds no books, users or loans.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrDanglingReference indicates a loan pointing to a missing book or user.
	ErrDanglingReference = errors.New("dangling reference")
	// ErrInvalidInterval indicates a loan returned before it was made.
	ErrInvalidInterval = errors.New("invalid interval")
)

type WarningKind string

const (
	WarningEmptyDataset      WarningKind = "empty_dataset"
	WarningDanglingReference WarningKind = "dangling_reference"
	WarningInvalidInterval   WarningKind = "invalid_interval"
)

// Warning is a non-fatal condition found while analyzing a snapshot.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	LoanID  int64       `json:"loan_id,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) Error() string {
	return string(w.Kind) + ": " + w.Message
}

func (w Warning) Unwrap() error {
	switch w.Kind {
	case WarningEmptyDataset:
		return ErrEmptyDataset
	case WarningDanglingReference:
		return ErrDanglingReference
	case WarningInvalidInterval:
		return ErrInvalidInterval
	}
	return nil
}
