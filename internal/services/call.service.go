package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pura-ai/call-tracker/internal/export"
	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/prom"
)

type CallRepository interface {
	IdentityFinder
	Create(ctx context.Context, call *model.Call) (*model.Call, error)
	FindByID(ctx context.Context, id int64) (*model.Call, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Call, error)
	Update(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	DeactivateAll(ctx context.Context, at time.Time) (int64, error)
	Aggregate(ctx context.Context) ([]repository.CallAggregate, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.CallEvent) error
}

type CallService struct {
	repo      CallRepository
	resolver  *DuplicateResolver
	validator *Validator
	publisher EventPublisher
	now       func() time.Time
}

// NewCallService wires the call lifecycle; publisher may be nil.
func NewCallService(repo CallRepository, publisher EventPublisher, opts ValidationOptions) *CallService {
	return &CallService{
		repo:      repo,
		resolver:  NewDuplicateResolver(repo, opts.ClinicRequired),
		validator: NewValidator(opts),
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns every call, newest first. A failing store yields an empty list.
func (s *CallService) List(ctx context.Context) ([]*model.Call, error) {
	return s.list(ctx, false)
}

// ListActive returns the calls of the current day.
func (s *CallService) ListActive(ctx context.Context) ([]*model.Call, error) {
	return s.list(ctx, true)
}

// Refresh re-reads the current-day view; it never writes.
func (s *CallService) Refresh(ctx context.Context) ([]*model.Call, error) {
	return s.list(ctx, true)
}

func (s *CallService) list(ctx context.Context, activeOnly bool) ([]*model.Call, error) {
	calls, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		logger.Warn("[calls] list failed, returning empty result", "active_only", activeOnly, "error", err)
		return []*model.Call{}, nil
	}
	return calls, nil
}

// Create logs a call attempt. An attempt for an identity that already exists
// re-opens that call instead of inserting a new one.
func (s *CallService) Create(ctx context.Context, req model.CallCreateRequest) (*model.CreateResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	comment := ""
	if req.Comment != nil {
		comment = *req.Comment
	}
	now := s.now()

	var result *model.CreateResult
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		identity := model.CallIdentity{PatientName: req.PatientName, AppointmentID: req.AppointmentID, Clinic: req.Clinic}
		existing, err := s.resolver.Resolve(ctx, identity)
		if err != nil {
			return err
		}

		if existing == nil {
			created, err := s.repo.Create(ctx, &model.Call{
				PatientName:     req.PatientName,
				AppointmentID:   req.AppointmentID,
				Clinic:          req.Clinic,
				AppointmentTime: req.AppointmentTime,
				AgentName:       req.AgentName,
				Status:          model.CallStatusNoAnswer,
				Comment:         &comment,
				NumberOfTrials:  1,
				IsActive:        true,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
			if err != nil {
				return storeError("create call", err)
			}
			result = &model.CreateResult{Call: created}
			return nil
		}

		updated := *existing
		updated.AppointmentTime = req.AppointmentTime
		updated.AgentName = req.AgentName
		updated.Comment = &comment
		updated.Status = model.CallStatusNoAnswer
		updated.NumberOfTrials = existing.NumberOfTrials + 1
		updated.IsActive = true
		updated.UpdatedAt = notBefore(now, existing.CreatedAt)

		err = s.repo.Update(ctx, existing.ID, map[string]any{
			"appointment_time": updated.AppointmentTime,
			"agent_name":       updated.AgentName,
			"comment":          comment,
			"status":           string(updated.Status),
			"number_of_trials": updated.NumberOfTrials,
			"is_active":        true,
			"updated_at":       updated.UpdatedAt,
		})
		if err != nil {
			return storeError("update call", err)
		}
		result = &model.CreateResult{Call: &updated, IsUpdate: true}
		return nil
	})
	if err != nil {
		if KindOf(err) == "" {
			err = storeError("create call", err)
		}
		return nil, err
	}

	if result.IsUpdate {
		prom.AddCallCreated("reattempted")
		s.publish(ctx, model.CallEventReattempted, result.Call)
	} else {
		prom.AddCallCreated("inserted")
		s.publish(ctx, model.CallEventCreated, result.Call)
	}
	return result, nil
}

// Update applies a partial update to the call with the given id.
func (s *CallService) Update(ctx context.Context, id int64, req model.CallUpdateRequest) (*model.Call, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return nil, notFoundError("call %d not found", id)
		}
		return nil, storeError("load call", err)
	}
	if req.Empty() {
		return existing, nil
	}

	updated := *existing
	fields := make(map[string]any)
	if req.PatientName != nil {
		updated.PatientName = *req.PatientName
		fields["patient_name"] = updated.PatientName
	}
	if req.AppointmentID != nil {
		updated.AppointmentID = *req.AppointmentID
		fields["appointment_id"] = updated.AppointmentID
	}
	if req.Clinic != nil {
		updated.Clinic = *req.Clinic
		fields["clinic"] = updated.Clinic
	}
	if req.AppointmentTime != nil {
		updated.AppointmentTime = *req.AppointmentTime
		fields["appointment_time"] = updated.AppointmentTime
	}
	if req.AgentName != nil {
		updated.AgentName = *req.AgentName
		fields["agent_name"] = updated.AgentName
	}
	if req.Status != nil {
		updated.Status = *req.Status
		fields["status"] = string(updated.Status)
	}
	if req.Comment != nil {
		comment := *req.Comment
		updated.Comment = &comment
		fields["comment"] = comment
	}
	updated.UpdatedAt = notBefore(s.now(), existing.CreatedAt)
	fields["updated_at"] = updated.UpdatedAt

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return nil, notFoundError("call %d not found", id)
		}
		return nil, storeError("update call", err)
	}

	if req.Status != nil {
		prom.AddCallStatusUpdate(string(*req.Status))
	}
	s.publish(ctx, model.CallEventUpdated, &updated)
	return &updated, nil
}

// Delete removes a call permanently. Only administrators may delete.
func (s *CallService) Delete(ctx context.Context, actor model.Identity, id int64) error {
	if !actor.IsAdmin {
		return &Error{Kind: KindForbidden, Message: "only administrators can delete calls"}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCallNotFound) {
			return notFoundError("call %d not found", id)
		}
		return storeError("delete call", err)
	}

	s.publish(ctx, model.CallEventDeleted, &model.Call{ID: id, AgentName: actor.AgentName})
	return nil
}

// ArchiveDay hides every active call from the current-day view. Rows are kept.
func (s *CallService) ArchiveDay(ctx context.Context) (int64, error) {
	n, err := s.repo.DeactivateAll(ctx, s.now())
	if err != nil {
		return 0, storeError("archive day", err)
	}

	prom.AddCallsArchived(n)
	s.emit(ctx, model.CallEvent{Type: model.CallEventDayArchived, Count: n})
	logger.Info("[calls] day archived", "archived", n)
	return n, nil
}

// Export renders every call as CSV, in list order.
func (s *CallService) Export(ctx context.Context) (*model.ExportResult, error) {
	calls, _ := s.List(ctx)
	content, fileName := export.FormatCSV(calls, s.now())
	return &model.ExportResult{Content: content, FileName: fileName}, nil
}

// ExportXLSX renders every call as a spreadsheet.
func (s *CallService) ExportXLSX(ctx context.Context) ([]byte, string, error) {
	calls, _ := s.List(ctx)
	return export.FormatXLSX(calls, s.now())
}

// Stats aggregates all calls for the admin dashboard.
func (s *CallService) Stats(ctx context.Context) (*model.CallStats, error) {
	stats := &model.CallStats{
		ByStatus: map[model.CallStatus]int64{},
		ByAgent:  []model.AgentStats{},
		ByClinic: map[string]int64{},
	}
	for _, st := range model.CallStatuses {
		stats.ByStatus[st] = 0
	}

	rows, err := s.repo.Aggregate(ctx)
	if err != nil {
		logger.Warn("[calls] stats failed, returning empty result", "error", err)
		return stats, nil
	}

	agents := make(map[string]*model.AgentStats)
	for _, r := range rows {
		status := model.CallStatus(r.Status)
		stats.Total += r.Count
		if r.IsActive {
			stats.Active += r.Count
		}
		stats.ByStatus[status] += r.Count
		stats.ByClinic[r.Clinic] += r.Count

		a, ok := agents[r.AgentName]
		if !ok {
			a = &model.AgentStats{AgentName: r.AgentName}
			agents[r.AgentName] = a
		}
		a.Total += r.Count
		switch status {
		case model.CallStatusConfirmed:
			a.Confirmed += r.Count
		case model.CallStatusRedirected:
			a.Redirected += r.Count
		case model.CallStatusNoAnswer:
			a.NoAnswer += r.Count
		}
	}

	for _, a := range agents {
		stats.ByAgent = append(stats.ByAgent, *a)
	}
	sort.Slice(stats.ByAgent, func(i, j int) bool {
		return stats.ByAgent[i].AgentName < stats.ByAgent[j].AgentName
	})
	if stats.Total > 0 {
		stats.ConfirmationRate = float64(stats.ByStatus[model.CallStatusConfirmed]) / float64(stats.Total)
	}
	return stats, nil
}

func (s *CallService) publish(ctx context.Context, t model.CallEventType, call *model.Call) {
	s.emit(ctx, model.CallEvent{
		Type:      t,
		CallID:    call.ID,
		AgentName: call.AgentName,
		Status:    call.Status,
	})
}

// emit never fails the caller; the write it reports is already committed.
func (s *CallService) emit(ctx context.Context, event model.CallEvent) {
	if s.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.now()
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Error("[calls] publish event failed", "type", event.Type, "call_id", event.CallID, "error", err)
	}
}

func notBefore(t, floor time.Time) time.Time {
	if t.Before(floor) {
		return floor
	}
	return t
}
