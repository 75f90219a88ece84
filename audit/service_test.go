package audit

import (
	"context"
	"testing"
	"time"

	"github.com/studymate/server/model"
	"github.com/studymate/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nop() *zap.Logger { return zap.NewNop() }

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestLog_EnqueuedAndFlushed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	userID := int64(2)
	svc.Log(Entry{
		TraceID:    "trace-123",
		UserID:     &userID,
		Action:     "/friendship/send/",
		Request:    map[string]int{"receiver_id": 5},
		Status:     201,
		IP:         "127.0.0.1",
		DurationMs: 42,
	})

	// Stop flushes remaining entries
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "trace-123", logs[0].TraceID)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, int64(2), *logs[0].UserID)
	assert.Equal(t, "/friendship/send/", logs[0].Action)
	assert.JSONEq(t, `{"receiver_id":5}`, string(logs[0].Request))
	assert.Equal(t, 201, logs[0].Status)
	assert.Equal(t, "127.0.0.1", logs[0].IP)
	assert.Equal(t, 42, logs[0].DurationMs)
}

func TestLog_MultipleLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < 10; i++ {
		svc.Log(Entry{Action: "action", IP: "10.0.0.1"})
	}

	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(10), count)
}

func TestLog_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < batchSize+5; i++ {
		svc.Log(Entry{Action: "batch"})
	}

	svc.Stop(context.Background())

	var count int64
	db.Model(&model.AuditLog{}).Count(&count)
	assert.Equal(t, int64(batchSize+5), count)
}

func TestLog_TimerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	defer svc.Stop(context.Background())

	svc.Log(Entry{Action: "timer_test"})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.AuditLog{}).Where("action = ?", "timer_test").Count(&count)
		return count == 1
	}, flushInterval+2*time.Second, 100*time.Millisecond)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	svc.Stop(context.Background())
	assert.NotPanics(t, func() { svc.Stop(context.Background()) })
}

func TestLog_NilFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	svc.Log(Entry{Action: "anonymous"})
	svc.Stop(context.Background())

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Empty(t, logs[0].Request)
}

func TestLog_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())

	for i := 0; i < queueSize+10; i++ {
		svc.Log(Entry{Action: "flood"})
	}
	assert.NotPanics(t, func() { svc.Stop(context.Background()) })
}

func TestPrune_RemovesOldRowsOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nop())
	defer svc.Stop(context.Background())

	now := time.Now()
	require.NoError(t, db.Create(&model.AuditLog{TraceID: "old", Action: "old", CreatedAt: now.Add(-48 * time.Hour)}).Error)
	require.NoError(t, db.Create(&model.AuditLog{TraceID: "new", Action: "new", CreatedAt: now}).Error)

	n, err := svc.Prune(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var logs []model.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "new", logs[0].Action)

	n, err = svc.Prune(context.Background(), now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}
