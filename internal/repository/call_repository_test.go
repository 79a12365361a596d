package repository

import (
	"context"
	"testing"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)

func newCall(patient, appointmentID, clinic string, at time.Time) *model.Call {
	return &model.Call{
		PatientName:     patient,
		AppointmentID:   appointmentID,
		Clinic:          clinic,
		AppointmentTime: "10:00 AM",
		AgentName:       "Agent 1",
		Status:          model.CallStatusNoAnswer,
		Comment:         ptr(""),
		NumberOfTrials:  1,
		IsActive:        true,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
}

func TestCallRepository_Create(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	t.Run("create call successfully", func(t *testing.T) {
		created, err := repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "John Doe", created.PatientName)
		assert.Equal(t, model.CallStatusNoAnswer, created.Status)
		assert.True(t, created.IsActive)
		assert.Equal(t, baseTime, created.CreatedAt)
	})

	t.Run("status outside the enum is rejected by the store", func(t *testing.T) {
		c := newCall("C", "3", "SSMC", baseTime)
		c.Status = "pending"
		_, err := repo.Create(ctx, c)
		assert.Error(t, err)
	})
}

func TestCallRepository_FindByID(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "", found.CommentText())

	_, err = repo.FindByID(ctx, created.ID+100)
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestCallRepository_FindByIdentity(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	first, err := repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime.Add(time.Minute)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newCall("John Doe", "12345", "Other", baseTime))
	require.NoError(t, err)

	t.Run("lowest id wins among duplicates", func(t *testing.T) {
		found, err := repo.FindByIdentity(ctx, model.CallIdentity{PatientName: "John Doe", AppointmentID: "12345", Clinic: "SSMC"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("match is case sensitive", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, model.CallIdentity{PatientName: "john doe", AppointmentID: "12345", Clinic: "SSMC"})
		assert.ErrorIs(t, err, ErrCallNotFound)
	})

	t.Run("empty clinic is its own identity", func(t *testing.T) {
		_, err := repo.FindByIdentity(ctx, model.CallIdentity{PatientName: "John Doe", AppointmentID: "12345"})
		assert.ErrorIs(t, err, ErrCallNotFound)
	})
}

func TestCallRepository_List(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	older, err := repo.Create(ctx, newCall("A", "1", "SSMC", baseTime))
	require.NoError(t, err)
	tieA, err := repo.Create(ctx, newCall("B", "2", "SSMC", baseTime.Add(time.Hour)))
	require.NoError(t, err)
	tieB, err := repo.Create(ctx, newCall("C", "3", "SSMC", baseTime.Add(time.Hour)))
	require.NoError(t, err)

	t.Run("newest first with ascending id on ties", func(t *testing.T) {
		calls, err := repo.List(ctx, false)
		require.NoError(t, err)
		require.Len(t, calls, 3)
		assert.Equal(t, []int64{tieA.ID, tieB.ID, older.ID}, []int64{calls[0].ID, calls[1].ID, calls[2].ID})
	})

	t.Run("active only skips archived calls", func(t *testing.T) {
		n, err := repo.DeactivateAll(ctx, baseTime.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		_, err = repo.Create(ctx, newCall("D", "4", "SSMC", baseTime.Add(3*time.Hour)))
		require.NoError(t, err)

		active, err := repo.List(ctx, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "D", active[0].PatientName)

		all, err := repo.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 4)
	})
}

func TestCallRepository_Update(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime))
	require.NoError(t, err)

	later := baseTime.Add(time.Hour)
	err = repo.Update(ctx, created.ID, map[string]any{"status": string(model.CallStatusConfirmed), "updated_at": later})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CallStatusConfirmed, found.Status)
	assert.Equal(t, baseTime, found.CreatedAt)
	assert.Equal(t, later, found.UpdatedAt)

	err = repo.Update(ctx, created.ID+1, map[string]any{"status": string(model.CallStatusConfirmed)})
	assert.ErrorIs(t, err, ErrCallNotFound)
}

func TestCallRepository_Delete(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, newCall("John Doe", "12345", "SSMC", baseTime))
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, created.ID+1), ErrCallNotFound)
	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.Delete(ctx, created.ID))
	total, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCallRepository_Aggregate(t *testing.T) {
	repo := NewCallRepository(SetupTestDB(t).DB)
	ctx := context.Background()

	c1 := newCall("A", "1", "SSMC", baseTime)
	c2 := newCall("B", "2", "SSMC", baseTime)
	c2.Status = model.CallStatusConfirmed
	c3 := newCall("C", "3", "Other", baseTime)
	c3.AgentName = "Agent 2"
	for _, c := range []*model.Call{c1, c2, c3} {
		_, err := repo.Create(ctx, c)
		require.NoError(t, err)
	}

	rows, err := repo.Aggregate(ctx)
	require.NoError(t, err)

	var total int64
	perAgent := map[string]int64{}
	for _, r := range rows {
		total += r.Count
		perAgent[r.AgentName] += r.Count
	}
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), perAgent["Agent 1"])
	assert.Equal(t, int64(1), perAgent["Agent 2"])
}

func TestCallRepository_WithinTransaction(t *testing.T) {
	db := SetupTestDB(t).DB
	repo := NewCallRepository(db)
	ctx := context.Background()

	err := db.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Create(ctx, newCall("A", "1", "SSMC", baseTime)); err != nil {
			return err
		}
		return ErrCallNotFound
	})
	assert.ErrorIs(t, err, ErrCallNotFound)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, total, "rolled back insert must not be visible")
}
