package repository

import (
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"gorm.io/gorm"
)

type CallEntity struct {
	ID              int64     `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	PatientName     string    `db:"patient_name"     gorm:"column:patient_name;not null;index:idx_calls_identity,priority:1"`
	AppointmentID   string    `db:"appointment_id"   gorm:"column:appointment_id;not null;index:idx_calls_identity,priority:2"`
	Clinic          string    `db:"clinic"           gorm:"column:clinic;not null;index:idx_calls_identity,priority:3"`
	AppointmentTime string    `db:"appointment_time" gorm:"column:appointment_time;not null"`
	AgentName       string    `db:"agent_name"       gorm:"column:agent_name;not null"`
	Status          string    `db:"status"           gorm:"column:status;not null;check:chk_calls_status,status IN ('no_answer','confirmed','redirected')"`
	Comment         *string   `db:"comment"          gorm:"column:comment"`
	NumberOfTrials  int       `db:"number_of_trials" gorm:"column:number_of_trials;not null"`
	IsActive        bool      `db:"is_active"        gorm:"column:is_active;not null;index"`
	CreatedAt       time.Time `db:"created_at"       gorm:"column:created_at;not null;autoCreateTime:false"`
	UpdatedAt       time.Time `db:"updated_at"       gorm:"column:updated_at;not null;autoUpdateTime:false"`
}

func (CallEntity) TableName() string {
	return "calls"
}

func toCallEntity(c *model.Call) *CallEntity {
	if c == nil {
		return nil
	}
	return &CallEntity{
		ID:              c.ID,
		PatientName:     c.PatientName,
		AppointmentID:   c.AppointmentID,
		Clinic:          c.Clinic,
		AppointmentTime: c.AppointmentTime,
		AgentName:       c.AgentName,
		Status:          string(c.Status),
		Comment:         c.Comment,
		NumberOfTrials:  c.NumberOfTrials,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toCallModel(e *CallEntity) *model.Call {
	if e == nil {
		return nil
	}
	return &model.Call{
		ID:              e.ID,
		PatientName:     e.PatientName,
		AppointmentID:   e.AppointmentID,
		Clinic:          e.Clinic,
		AppointmentTime: e.AppointmentTime,
		AgentName:       e.AgentName,
		Status:          model.CallStatus(e.Status),
		Comment:         e.Comment,
		NumberOfTrials:  e.NumberOfTrials,
		IsActive:        e.IsActive,
		CreatedAt:       e.CreatedAt.UTC(),
		UpdatedAt:       e.UpdatedAt.UTC(),
	}
}

func toCallModels(entities []*CallEntity) []*model.Call {
	models := make([]*model.Call, len(entities))
	for i, e := range entities {
		models[i] = toCallModel(e)
	}
	return models
}

// CallAggregate is one group of the stats query.
type CallAggregate struct {
	AgentName string `gorm:"column:agent_name"`
	Clinic    string `gorm:"column:clinic"`
	Status    string `gorm:"column:status"`
	IsActive  bool   `gorm:"column:is_active"`
	Count     int64  `gorm:"column:count"`
}

// AutoMigrate creates the calls table on drivers that are not managed by the
// goose migrations (sqlite).
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CallEntity{})
}
