package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCallNotFound = errors.New("call not found")
)

const listOrder = "created_at DESC, id ASC"

type CallRepository struct {
	*pg.DB
}

func NewCallRepository(db *pg.DB) *CallRepository {
	return &CallRepository{
		db,
	}
}

func (r *CallRepository) Create(ctx context.Context, call *model.Call) (*model.Call, error) {
	entity := toCallEntity(call)
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}
	if entity.UpdatedAt.IsZero() {
		entity.UpdatedAt = entity.CreatedAt
	}

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCallModel(entity), nil
}

func (r *CallRepository) FindByID(ctx context.Context, id int64) (*model.Call, error) {
	var entity CallEntity
	err := r.Read(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return toCallModel(&entity), nil
}

// FindByIdentity returns the lowest-id call matching the identity tuple.
// Duplicates are possible since the tuple has no unique constraint.
func (r *CallRepository) FindByIdentity(ctx context.Context, identity model.CallIdentity) (*model.Call, error) {
	var entity CallEntity
	err := r.Read(ctx).
		Where("patient_name = ? AND appointment_id = ? AND clinic = ?", identity.PatientName, identity.AppointmentID, identity.Clinic).
		Order("id ASC").
		Take(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		return nil, err
	}
	return toCallModel(&entity), nil
}

// List returns calls newest first; activeOnly restricts it to the current day.
func (r *CallRepository) List(ctx context.Context, activeOnly bool) ([]*model.Call, error) {
	q := r.Read(ctx).Model(&CallEntity{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var entities []*CallEntity
	if err := q.Order(listOrder).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCallModels(entities), nil
}

// Update applies column values to one call.
func (r *CallRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	res := r.Write(ctx).Model(&CallEntity{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCallNotFound
	}
	return nil
}

func (r *CallRepository) Delete(ctx context.Context, id int64) error {
	res := r.Write(ctx).Where("id = ?", id).Delete(&CallEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCallNotFound
	}
	return nil
}

// DeactivateAll hides every active call from the current-day view and
// returns how many rows changed.
func (r *CallRepository) DeactivateAll(ctx context.Context, at time.Time) (int64, error) {
	res := r.Write(ctx).Model(&CallEntity{}).
		Where("is_active = ?", true).
		Updates(map[string]any{"is_active": false, "updated_at": at})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *CallRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.Read(ctx).Model(&CallEntity{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Aggregate groups calls by agent, clinic, status and active flag.
func (r *CallRepository) Aggregate(ctx context.Context) ([]CallAggregate, error) {
	var rows []CallAggregate
	err := r.Read(ctx).Model(&CallEntity{}).
		Select("agent_name, clinic, status, is_active, COUNT(*) AS count").
		Group("agent_name, clinic, status, is_active").
		Order("agent_name ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
