package services

import (
	"context"
	"errors"
	"strings"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/repository"
)

type IdentityFinder interface {
	FindByIdentity(ctx context.Context, identity model.CallIdentity) (*model.Call, error)
}

// DuplicateResolver decides whether a call attempt repeats an existing call.
type DuplicateResolver struct {
	finder         IdentityFinder
	clinicRequired bool
}

func NewDuplicateResolver(finder IdentityFinder, clinicRequired bool) *DuplicateResolver {
	return &DuplicateResolver{finder: finder, clinicRequired: clinicRequired}
}

// Resolve returns the existing call for identity, or nil when there is none.
// Among duplicates the lowest id wins.
func (r *DuplicateResolver) Resolve(ctx context.Context, identity model.CallIdentity) (*model.Call, error) {
	if strings.TrimSpace(identity.PatientName) == "" {
		return nil, validationError("patientName is required")
	}
	if strings.TrimSpace(identity.AppointmentID) == "" {
		return nil, validationError("appointmentId is required")
	}
	if r.clinicRequired && strings.TrimSpace(identity.Clinic) == "" {
		return nil, validationError("clinic is required")
	}

	existing, err := r.finder.FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return nil, nil
		}
		return nil, storeError("look up call", err)
	}
	return existing, nil
}
