package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/XristosAndreopo/invoice-procurement-management/internal/jobs"
)

type stubRefresher struct {
	profileID, ruleID *int64
	n                 int
	err               error
}

func (s *stubRefresher) RefreshReferencing(ctx context.Context, profileID, ruleID *int64) (int, error) {
	s.profileID, s.ruleID = profileID, ruleID
	return s.n, s.err
}

type stubPruner struct {
	retention time.Duration
}

func (s *stubPruner) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	s.retention = retention
	return 12, nil
}

type recordingEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (r *recordingEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.tasks = append(r.tasks, task)
	return &asynq.TaskInfo{ID: "t1", Queue: QueueDefault}, nil
}

func (r *recordingEnqueuer) Close() error { return nil }

func TestTotalsRefreshJobPassesScope(t *testing.T) {
	profileID := int64(3)
	task, err := NewTotalsRefreshTask(&profileID, nil)
	require.NoError(t, err)
	require.Equal(t, TaskTotalsRefresh, task.Type())

	refresher := &stubRefresher{n: 4}
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)
	job := NewTotalsRefreshJob(refresher, nil, metrics)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, int64(3), *refresher.profileID)
	require.Nil(t, refresher.ruleID)

	families, err := registry.Gather()
	require.NoError(t, err)
	var runs float64
	for _, mf := range families {
		if mf.GetName() == "procman_jobs_total" {
			for _, m := range mf.GetMetric() {
				runs += m.GetCounter().GetValue()
			}
		}
	}
	require.Equal(t, float64(1), runs)
}

func TestTotalsRefreshJobPropagatesFailure(t *testing.T) {
	task, err := NewTotalsRefreshTask(nil, nil)
	require.NoError(t, err)
	job := NewTotalsRefreshJob(&stubRefresher{err: errors.New("db down")}, nil, nil)
	require.EqualError(t, job.Handle(context.Background(), task), "db down")
}

func TestJobsSkipRetryOnBadPayload(t *testing.T) {
	bad := asynq.NewTask(TaskTotalsRefresh, []byte("{"))
	require.ErrorIs(t, NewTotalsRefreshJob(&stubRefresher{}, nil, nil).Handle(context.Background(), bad), asynq.SkipRetry)

	zero, err := NewAuditPruneTask(0)
	require.NoError(t, err)
	require.ErrorIs(t, NewAuditPruneJob(&stubPruner{}, nil, nil).Handle(context.Background(), zero), asynq.SkipRetry)
}

func TestAuditPruneJobUsesRetentionDays(t *testing.T) {
	task, err := NewAuditPruneTask(90)
	require.NoError(t, err)
	pruner := &stubPruner{}
	require.NoError(t, NewAuditPruneJob(pruner, nil, nil).Handle(context.Background(), task))
	require.Equal(t, 90*24*time.Hour, pruner.retention)
}

func TestClientEnqueuesTotalsRefresh(t *testing.T) {
	enq := &recordingEnqueuer{}
	client := NewClientWith(enq, nil)
	ruleID := int64(8)
	require.NoError(t, client.EnqueueTotalsRefresh(context.Background(), nil, &ruleID))
	require.Len(t, enq.tasks, 1)

	var payload TotalsRefreshPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Nil(t, payload.ProfileID)
	require.Equal(t, int64(8), *payload.RuleID)

	require.NoError(t, NewClientWith(&recordingEnqueuer{err: asynq.ErrDuplicateTask}, nil).EnqueueTotalsRefresh(context.Background(), nil, nil))
	require.Error(t, NewClientWith(&recordingEnqueuer{err: errors.New("redis down")}, nil).EnqueueTotalsRefresh(context.Background(), nil, nil))
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestHealthEndpoint(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 2, Failed: 1}}, nil).MountRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","paused":false,"pending":2,"active":0,"scheduled":0,"retry":0,"failed":1}`, rr.Body.String())

	r = chi.NewRouter()
	NewHandler(stubInspector{err: errors.New("down")}, nil).MountRoutes(r)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestWorkerScheduleRejectsEmptyEntry(t *testing.T) {
	w := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.Error(t, w.Schedule("", nil))
	require.Nil(t, w.scheduler)
}
