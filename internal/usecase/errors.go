package usecase

import "errors"

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotConfirmed = "NOT_CONFIRMED"
	CodeStorage      = "STORAGE_ERROR"
)

var ErrRemovalNotConfirmed = errors.New("remoção não confirmada pelo usuário")

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
