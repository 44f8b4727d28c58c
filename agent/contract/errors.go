package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
	ErrMalformedState  = errors.New("conversation state is malformed")
	ErrStateComplete   = errors.New("conversation state is already complete")
)
