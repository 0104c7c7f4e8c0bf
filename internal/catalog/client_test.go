package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assistant/internal/domain"
)

func TestHTTPClient_ListDepartments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/departments", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "name": "Computer Science", "code": "CSE"},
			{"id": 2, "name": "Electronics", "code": "ECE"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	departments, err := client.ListDepartments(context.Background())
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, "Computer Science", departments[0].Name)
	assert.Equal(t, "CSE", departments[0].Code)
}

func TestHTTPClient_ListSubjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/subjects/list/Computer%20Science", r.URL.EscapedPath())
		json.NewEncoder(w).Encode(map[string]any{
			"subjects": []map[string]any{
				{"name": "Algorithms", "file_count": 4},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	subjects, err := client.ListSubjects(context.Background(), "Computer Science")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Algorithms", subjects[0].Name)
	assert.Equal(t, "Computer Science", subjects[0].DepartmentName)
	assert.Equal(t, 4, subjects[0].DocumentCount)
}

func TestHTTPClient_ListSubjects_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"subjects": []any{}})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	subjects, err := client.ListSubjects(context.Background(), "Civil")
	require.NoError(t, err)
	assert.Empty(t, subjects)
}

func TestHTTPClient_CreateSubject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Computer Science", body["department"])
		assert.Equal(t, "Algorithms", body["name"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"name": "Algorithms", "file_count": 0})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	subject, err := client.CreateSubject(context.Background(), "Computer Science", "Algorithms")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", subject.Name)
	assert.Equal(t, 0, subject.DocumentCount)
}

func TestHTTPClient_CreateSubject_ConflictReturnsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusConflict)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"subjects": []map[string]any{
				{"name": "Algorithms", "file_count": 7},
			},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	subject, err := client.CreateSubject(context.Background(), "Computer Science", "Algorithms")
	require.NoError(t, err)
	assert.Equal(t, "Algorithms", subject.Name)
	assert.Equal(t, 7, subject.DocumentCount)
}

func TestHTTPClient_UpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	server.Close() // connection refused

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.ListDepartments(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestHTTPClient_ServerErrorIsUpstreamUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.ListDepartments(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
