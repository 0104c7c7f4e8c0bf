package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assistant/internal/api/middleware"
	"campus-assistant/internal/api/response"
	"campus-assistant/internal/domain"
	"campus-assistant/internal/retrieval"
	"campus-assistant/internal/security"
	"campus-assistant/internal/service"
)

type stubRetriever struct {
	resp *retrieval.Response
	err  error
}

func (s *stubRetriever) Query(ctx context.Context, scope domain.ResolvedScope, req retrieval.Request) (*retrieval.Response, error) {
	return s.resp, s.err
}

type stubCatalog struct {
	departments []domain.Department
	subjects    []domain.Subject
	created     *domain.Subject
	err         error
}

func (s *stubCatalog) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	return s.departments, s.err
}

func (s *stubCatalog) ListSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	return s.subjects, s.err
}

func (s *stubCatalog) CreateSubject(ctx context.Context, department, name string) (*domain.Subject, error) {
	return s.created, s.err
}

type stubFlusher struct {
	deleted int64
	err     error
}

func (s *stubFlusher) FlushFresh(ctx context.Context) (int64, error) {
	return s.deleted, s.err
}

func newChatHandler(retriever retrieval.Client) *ChatHandler {
	resolver := service.NewScopeResolver(security.NewRoleAccessPolicy())
	return NewChatHandler(service.NewHubManager(resolver, retriever, nil), nil)
}

func asUser(r *http.Request, user domain.User) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func withVariant(r *http.Request, variant string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("variant", variant)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func withDepartment(r *http.Request, department string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("department", department)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var env response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}

func TestChatHandler_Ask(t *testing.T) {
	h := newChatHandler(&stubRetriever{
		resp: &retrieval.Response{Response: "The library closes at 10pm.", SourcesCount: 2},
	})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	body := bytes.NewBufferString(`{"query": "when does the library close?", "scope_kind": "general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/general/ask", body)
	req = asUser(withVariant(req, "general"), student)

	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestChatHandler_Ask_MissingSubject(t *testing.T) {
	h := newChatHandler(&stubRetriever{})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	body := bytes.NewBufferString(`{"query": "what is ATP?", "scope_kind": "subject"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/subject/ask", body)
	req = asUser(withVariant(req, "subject"), student)

	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
}

func TestChatHandler_Ask_ForbiddenForAdminOnGeneral(t *testing.T) {
	h := newChatHandler(&stubRetriever{})
	admin := domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	body := bytes.NewBufferString(`{"query": "hello", "scope_kind": "general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/general/ask", body)
	req = asUser(withVariant(req, "general"), admin)

	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatHandler_Ask_UnknownVariant(t *testing.T) {
	h := newChatHandler(&stubRetriever{})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	body := bytes.NewBufferString(`{"query": "hello", "scope_kind": "general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/oracle/ask", body)
	req = asUser(withVariant(req, "oracle"), student)

	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_Ask_ApologyOnRetrievalFailure(t *testing.T) {
	h := newChatHandler(&stubRetriever{err: domain.ErrUpstreamUnavailable})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	body := bytes.NewBufferString(`{"query": "hello", "scope_kind": "general"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/general/ask", body)
	req = asUser(withVariant(req, "general"), student)

	rec := httptest.NewRecorder()
	h.Ask(rec, req)

	// A failed retrieval is still a successful turn with an apology reply
	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool                  `json:"success"`
		Data    domain.ChatTurnResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.True(t, env.Data.Failed)
	require.NotNil(t, env.Data.AssistantMessage.SourcesCount)
	assert.Equal(t, 0, *env.Data.AssistantMessage.SourcesCount)
}

func TestChatHandler_Messages_GreetsFreshSession(t *testing.T) {
	h := newChatHandler(&stubRetriever{})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assistants/department/messages", nil)
	req = asUser(withVariant(req, "department"), student)

	rec := httptest.NewRecorder()
	h.Messages(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Messages []domain.ChatMessage `json:"messages"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data.Messages, 1)
	assert.Equal(t, domain.SenderAssistant, env.Data.Messages[0].Sender)
}

func TestChatHandler_Reset(t *testing.T) {
	h := newChatHandler(&stubRetriever{
		resp: &retrieval.Response{Response: "answer", SourcesCount: 1},
	})
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Chemistry"}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistants/general/reset", nil)
	req = asUser(withVariant(req, "general"), student)

	rec := httptest.NewRecorder()
	h.Reset(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCatalogHandler_ListDepartments(t *testing.T) {
	catalog := &stubCatalog{departments: []domain.Department{{ID: 1, Name: "Physics", Code: "PHY"}}}
	h := NewCatalogHandler(service.NewHierarchyRegistry(catalog, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/departments", nil)
	rec := httptest.NewRecorder()
	h.ListDepartments(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestCatalogHandler_ListDepartments_FallbackWhenUnavailable(t *testing.T) {
	catalog := &stubCatalog{err: domain.ErrUpstreamUnavailable}
	fallback := []string{"Computer Science", "Physics"}
	h := NewCatalogHandler(service.NewHierarchyRegistry(catalog, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, fallback)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/departments", nil)
	rec := httptest.NewRecorder()
	h.ListDepartments(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Departments []domain.Department `json:"departments"`
			Degraded    bool                `json:"degraded"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.True(t, env.Data.Degraded)
	require.Len(t, env.Data.Departments, 2)
	assert.Equal(t, "Computer Science", env.Data.Departments[0].Name)
}

func TestCatalogHandler_CreateSubject(t *testing.T) {
	catalog := &stubCatalog{
		departments: []domain.Department{{ID: 1, Name: "Computer Science", Code: "CSE"}},
		created:     &domain.Subject{Name: "Algorithms", DepartmentName: "Computer Science"},
	}
	h := NewCatalogHandler(service.NewHierarchyRegistry(catalog, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, nil)
	teacher := domain.User{ID: uuid.New(), Role: domain.RoleTeacher, HomeDepartment: "Computer Science"}

	body := bytes.NewBufferString(`{"name": "Algorithms"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/departments/Computer%20Science/subjects", body)
	req = asUser(withDepartment(req, "Computer Science"), teacher)

	rec := httptest.NewRecorder()
	h.CreateSubject(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCatalogHandler_CreateSubject_UnknownDepartment(t *testing.T) {
	catalog := &stubCatalog{
		departments: []domain.Department{{ID: 1, Name: "Physics", Code: "PHY"}},
		created:     &domain.Subject{Name: "Algorithms", DepartmentName: "Computer Science"},
	}
	h := NewCatalogHandler(service.NewHierarchyRegistry(catalog, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, nil)
	admin := domain.User{ID: uuid.New(), Role: domain.RoleAdmin}

	body := bytes.NewBufferString(`{"name": "Algorithms"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/departments/Computer%20Science/subjects", body)
	req = asUser(withDepartment(req, "Computer Science"), admin)

	rec := httptest.NewRecorder()
	h.CreateSubject(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_CreateSubject_StudentForbidden(t *testing.T) {
	h := NewCatalogHandler(service.NewHierarchyRegistry(&stubCatalog{}, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, nil)
	student := domain.User{ID: uuid.New(), Role: domain.RoleStudent, HomeDepartment: "Computer Science"}

	body := bytes.NewBufferString(`{"name": "Algorithms"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/departments/Computer%20Science/subjects", body)
	req = asUser(withDepartment(req, "Computer Science"), student)

	rec := httptest.NewRecorder()
	h.CreateSubject(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCatalogHandler_CreateSubject_CrossDepartmentForbidden(t *testing.T) {
	h := NewCatalogHandler(service.NewHierarchyRegistry(&stubCatalog{}, nil), security.NewRoleAccessPolicy(), &stubFlusher{}, nil)
	teacher := domain.User{ID: uuid.New(), Role: domain.RoleTeacher, HomeDepartment: "Physics"}

	body := bytes.NewBufferString(`{"name": "Algorithms"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/departments/Computer%20Science/subjects", body)
	req = asUser(withDepartment(req, "Computer Science"), teacher)

	rec := httptest.NewRecorder()
	h.CreateSubject(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCatalogHandler_FlushCache_AdminOnly(t *testing.T) {
	h := NewCatalogHandler(service.NewHierarchyRegistry(&stubCatalog{}, nil), security.NewRoleAccessPolicy(), &stubFlusher{deleted: 4}, nil)

	tests := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleDepartmentAdmin, http.StatusForbidden},
		{domain.RoleStudent, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			user := domain.User{ID: uuid.New(), Role: tt.role, HomeDepartment: "Physics"}
			req := httptest.NewRequest(http.MethodPost, "/api/v1/cache/flush", nil)
			req = asUser(req, user)

			rec := httptest.NewRecorder()
			h.FlushCache(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
