package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-field-keeper/internal/validators"
	"github.com/MKhiriev/go-field-keeper/models"
)

// TelemetryValidationService rejects malformed payloads and filters before
// they reach the wrapped service.
type TelemetryValidationService struct {
	inner     TelemetryService
	validator validators.Validator
}

func NewTelemetryValidationService() TelemetryServiceWrapper {
	return &TelemetryValidationService{
		validator: validators.NewTelemetryValidator(),
	}
}

func (v *TelemetryValidationService) Submit(ctx context.Context, session models.SessionValidity, projectID int64, submission models.TelemetrySubmission) ([]models.TelemetryResult, error) {
	if err := v.validator.Validate(ctx, submission); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return v.inner.Submit(ctx, session, projectID, submission)
}

func (v *TelemetryValidationService) List(ctx context.Context, filter models.TelemetryFilter, page models.Page) ([]models.TelemetryRecord, int64, error) {
	if err := v.validator.Validate(ctx, filter); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	return v.inner.List(ctx, filter, page)
}

func (v *TelemetryValidationService) Wrap(inner TelemetryService) TelemetryService {
	v.inner = inner
	return v
}
