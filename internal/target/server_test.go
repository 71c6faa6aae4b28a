package target

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewServer(NewMemoryStore(), nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func createTask(t *testing.T, srv *httptest.Server, title string) Task {
	t.Helper()
	resp, body := doJSON(t, "POST", srv.URL+"/api/tasks", map[string]string{"title": title})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task Task
	require.NoError(t, json.Unmarshal(body, &task))
	return task
}

func TestCreateTask(t *testing.T) {
	srv := newTestServer(t)

	task := createTask(t, srv, "write demo")
	assert.Equal(t, "write demo", task.Title)
	assert.Equal(t, DefaultStatus, task.Status)
	assert.NotZero(t, task.ID)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "POST", srv.URL+"/api/tasks", map[string]string{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "Title is required")
}

func TestListTasksFiltersByStatus(t *testing.T) {
	srv := newTestServer(t)

	createTask(t, srv, "one")
	resp, _ := doJSON(t, "POST", srv.URL+"/api/tasks", map[string]string{"title": "two", "status": "done"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, "GET", srv.URL+"/api/tasks?status=done", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Tasks []Task `json:"tasks"`
		Count int    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	require.Equal(t, 1, listing.Count)
	assert.Equal(t, "two", listing.Tasks[0].Title)
}

func TestListTasksPagination(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 5; i++ {
		createTask(t, srv, fmt.Sprintf("task-%d", i))
	}

	resp, body := doJSON(t, "GET", srv.URL+"/api/tasks?limit=2&offset=1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Count  int `json:"count"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(body, &listing))
	assert.Equal(t, 2, listing.Count)
	assert.Equal(t, 2, listing.Limit)
	assert.Equal(t, 1, listing.Offset)
}

func TestListTasksRejectsBadPagination(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "GET", srv.URL+"/api/tasks?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListTasksRejectsNegativePagination(t *testing.T) {
	srv := newTestServer(t)
	createTask(t, srv, "one")

	resp, _ := doJSON(t, "GET", srv.URL+"/api/tasks?offset=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, "GET", srv.URL+"/api/tasks?limit=-5", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTask(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "fetch me")

	resp, body := doJSON(t, "GET", fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got Task
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, task.ID, got.ID)
}

func TestGetTaskNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "GET", srv.URL+"/api/tasks/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTaskPartial(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "original")

	resp, body := doJSON(t, "PUT", fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID),
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got Task
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "original", got.Title, "unset fields keep their values")
}

func TestUpdateTaskRejectsEmptyUpdate(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "x")

	resp, body := doJSON(t, "PUT", fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "No valid fields")
}

func TestUpdateTaskNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "PUT", srv.URL+"/api/tasks/4242", map[string]string{"status": "done"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTask(t *testing.T) {
	srv := newTestServer(t)
	task := createTask(t, srv, "doomed")

	resp, _ := doJSON(t, "DELETE", fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, "GET", fmt.Sprintf("%s/api/tasks/%d", srv.URL, task.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteTaskNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, "DELETE", srv.URL+"/api/tasks/77", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCPUIntensive(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "POST", srv.URL+"/api/cpu-intensive", map[string]int{"iterations": 1000})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Iterations int     `json:"iterations"`
		Duration   float64 `json:"duration_seconds"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, 1000, got.Iterations)
	assert.GreaterOrEqual(t, got.Duration, 0.0)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "GET", srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestMetricsExposition(t *testing.T) {
	srv := newTestServer(t)

	// Generate some traffic first so the counters have series.
	createTask(t, srv, "metric fodder")

	resp, body := doJSON(t, "GET", srv.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_request_duration_seconds")
	assert.Contains(t, string(body), "http_requests_total")
}

func TestUnknownRouteIs404JSON(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, "GET", srv.URL+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Not found")
}
