package service

import "errors"

// Engine error taxonomy. Handlers map these onto HTTP statuses with
// errors.Is, поэтому сервисы оборачивают их через fmt.Errorf("...: %w").
var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrOperationNotAllowed = errors.New("operation not allowed for current order status")
	ErrInvalidStage        = errors.New("unknown production stage")
	ErrConflict            = errors.New("conflict")
	ErrInvalidTimeRange    = errors.New("end time is before start time")
)
