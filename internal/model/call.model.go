package model

import (
	"time"
)

// CallStatus is the outcome of a call attempt.
type CallStatus string

const (
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusConfirmed  CallStatus = "confirmed"
	CallStatusRedirected CallStatus = "redirected"
)

var CallStatuses = []CallStatus{CallStatusNoAnswer, CallStatusConfirmed, CallStatusRedirected}

func (s CallStatus) Valid() bool {
	for _, v := range CallStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Call struct {
	ID              int64      `json:"id"`
	PatientName     string     `json:"patientName"`
	AppointmentID   string     `json:"appointmentId"`
	Clinic          string     `json:"clinic"`
	AppointmentTime string     `json:"appointmentTime"`
	AgentName       string     `json:"agentName"`
	Status          CallStatus `json:"status"`
	Comment         *string    `json:"comment"`
	NumberOfTrials  int        `json:"numberOfTrials"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// CommentText returns the comment or an empty string when it is null.
func (c *Call) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// Identity returns the tuple used to detect repeated attempts.
func (c *Call) Identity() CallIdentity {
	return CallIdentity{
		PatientName:   c.PatientName,
		AppointmentID: c.AppointmentID,
		Clinic:        c.Clinic,
	}
}

// CallIdentity is matched exactly and case-sensitively.
type CallIdentity struct {
	PatientName   string
	AppointmentID string
	Clinic        string
}

// CallCreateRequest is the input of a call attempt.
type CallCreateRequest struct {
	PatientName     string  `json:"patientName"     validate:"notblank"`
	AppointmentID   string  `json:"appointmentId"   validate:"notblank"`
	Clinic          string  `json:"clinic"          validate:"clinic"`
	AppointmentTime string  `json:"appointmentTime" validate:"notblank,apptime"`
	AgentName       string  `json:"agentName"       validate:"notblank"`
	Comment         *string `json:"comment"`
}

// CallUpdateRequest is a partial update; nil fields are left untouched.
type CallUpdateRequest struct {
	PatientName     *string     `json:"patientName"     validate:"omitnil,notblank"`
	AppointmentID   *string     `json:"appointmentId"   validate:"omitnil,notblank"`
	Clinic          *string     `json:"clinic"          validate:"omitnil,clinic"`
	AppointmentTime *string     `json:"appointmentTime" validate:"omitnil,notblank,apptime"`
	AgentName       *string     `json:"agentName"       validate:"omitnil,notblank"`
	Status          *CallStatus `json:"status"          validate:"omitnil,callstatus"`
	Comment         *string     `json:"comment"`
}

func (r CallUpdateRequest) Empty() bool {
	return r.PatientName == nil && r.AppointmentID == nil && r.Clinic == nil &&
		r.AppointmentTime == nil && r.AgentName == nil && r.Status == nil && r.Comment == nil
}

// CreateResult tells whether Create inserted a new call or re-attempted an existing one.
type CreateResult struct {
	Call     *Call
	IsUpdate bool
}

type ExportResult struct {
	Content  string
	FileName string
}
