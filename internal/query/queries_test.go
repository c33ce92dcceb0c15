package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskhub/internal/api"
	"github.com/nhle/taskhub/internal/cache"
	"github.com/nhle/taskhub/internal/model"
)

func newTestQueries(t *testing.T, handler http.Handler) (*Queries, *cache.Cache) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := cache.New()
	client := api.NewClient(server.URL, nil, time.Second)
	return New(client, c), c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func taskPage(tasks ...model.Task) model.Page[model.Task] {
	total := len(tasks)
	pages := 0
	if total > 0 {
		pages = 1
	}
	return model.Page[model.Task]{
		Data:       tasks,
		Total:      total,
		Page:       1,
		Limit:      10,
		TotalPages: pages,
	}
}

func TestTasksCachesResult(t *testing.T) {
	var requests atomic.Int64
	q, _ := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, taskPage(model.Task{ID: 1, Title: "buy milk"}))
	}))

	filters := model.TaskFilters{Page: 1, Limit: 10}

	first, err := q.Tasks(context.Background(), filters)
	require.NoError(t, err)
	require.Len(t, first.Data, 1)

	second, err := q.Tasks(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), requests.Load())
}

func TestDistinctFiltersFetchSeparately(t *testing.T) {
	var requests atomic.Int64
	q, _ := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, taskPage())
	}))

	_, err := q.Tasks(context.Background(), model.TaskFilters{Page: 1, Limit: 10})
	require.NoError(t, err)
	_, err = q.Tasks(context.Background(), model.TaskFilters{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, int64(2), requests.Load())
}

func TestConcurrentCallersShareOneRequest(t *testing.T) {
	var requests atomic.Int64
	q, _ := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(50 * time.Millisecond)
		writeJSON(t, w, []model.Subscription{{ID: 1, TaskID: 5}})
	}))

	const callers = 10
	var wg sync.WaitGroup
	results := make([][]model.Subscription, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = q.Subscriptions(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
	}
	assert.Equal(t, int64(1), requests.Load())
}

func TestInvalidatedEntryRefetches(t *testing.T) {
	var requests atomic.Int64
	q, c := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(t, w, taskPage(model.Task{ID: int(requests.Load()), Title: "task"}))
	}))

	filters := model.TaskFilters{Page: 1, Limit: 10}

	first, err := q.Tasks(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Data[0].ID)

	c.Invalidate(cache.ByResource(cache.ResourceTasks))

	second, err := q.Tasks(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Data[0].ID)
	assert.Equal(t, int64(2), requests.Load())
}

func TestTaskRejectsInvalidID(t *testing.T) {
	q, _ := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be issued for an invalid id")
	}))

	_, err := q.Task(context.Background(), 0)
	assert.Error(t, err)

	_, err = q.TaskSubscribers(context.Background(), -1)
	assert.Error(t, err)
}

func TestFetchErrorWrapsAPIError(t *testing.T) {
	q, c := newTestQueries(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := q.Task(context.Background(), 99)
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, api.ErrNotFound, apiErr.Kind)

	entry := c.Get(cache.IDKey(cache.ResourceTask, 99))
	assert.Equal(t, cache.StatusError, entry.Status)
}

func TestCreateThenListRoundTrip(t *testing.T) {
	// A minimal stateful backend: list serves whatever was created.
	var mu sync.Mutex
	var tasks []model.Task

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		writeJSON(t, w, taskPage(tasks...))
	})
	mux.HandleFunc("POST /tasks", func(w http.ResponseWriter, r *http.Request) {
		var form model.TaskForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			t.Errorf("decoding task form: %v", err)
		}
		mu.Lock()
		task := model.Task{ID: len(tasks) + 1, Title: form.Title, IsPublic: form.IsPublic}
		tasks = append(tasks, task)
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, task)
	})

	q, c := newTestQueries(t, mux)

	before, err := q.Tasks(context.Background(), model.TaskFilters{})
	require.NoError(t, err)
	assert.Empty(t, before.Data)

	// Create directly through the client, then invalidate the way the
	// mutation layer does.
	var created model.Task
	require.NoError(t, q.client.Post(context.Background(), "/tasks", model.TaskForm{Title: "new task"}, &created))
	c.Invalidate(cache.ByResource(cache.ResourceTasks))

	after, err := q.Tasks(context.Background(), model.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, after.Data, 1)
	assert.Equal(t, "new task", after.Data[0].Title)
}
