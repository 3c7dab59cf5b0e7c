package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mind-engage/workshop-grades/internal/rbac"
)

func TestChecker_DefaultPolicy(t *testing.T) {
	c := rbac.NewChecker(nil)

	assert.True(t, c.Has("viewer", rbac.PermGradesView))
	assert.False(t, c.Has("viewer", rbac.PermGradesCompute))
	assert.True(t, c.Has("teacher", rbac.PermGradesCompute))
	assert.True(t, c.Has("teacher", rbac.PermGradesExport))
	assert.False(t, c.Has("teacher", rbac.PermRunsDelete))
	assert.True(t, c.Has("admin", rbac.PermRunsDelete))
	assert.False(t, c.Has("nobody", rbac.PermGradesView))

	assert.True(t, c.Any("viewer", rbac.PermGradesCompute, rbac.PermGradesView))
	assert.False(t, c.All("viewer", rbac.PermGradesCompute, rbac.PermGradesView))
}

func TestRequire(t *testing.T) {
	h := rbac.Require(rbac.PermGradesCompute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for role, want := range map[string]int{
		"":        http.StatusForbidden,
		"viewer":  http.StatusForbidden,
		"teacher": http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodPost, "/runs", nil)
		if role != "" {
			req = req.WithContext(rbac.WithRole(req.Context(), role))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestChecker_CustomPolicy(t *testing.T) {
	c := rbac.NewChecker(map[string][]string{"auditor": {"grades:view", "runs:*"}})
	assert.True(t, c.Has("auditor", rbac.PermRunsDelete))
	assert.False(t, c.Has("auditor", rbac.PermGradesCompute))

	h := c.RequireAll(rbac.PermGradesView, rbac.PermRunsDelete)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	req := httptest.NewRequest(http.MethodDelete, "/runs/x", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(rbac.WithRole(req.Context(), "auditor")))
	assert.Equal(t, http.StatusOK, rec.Code)
}
