package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/editor"
	"resumeforge/internal/resume"
)

func addSection(t *testing.T, srv *testServer, token string, resumeID uint, body map[string]any) resume.Section {
	t.Helper()
	w := srv.do(t, http.MethodPost, fmt.Sprintf("/v1/resumes/%d/sections", resumeID), token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[resume.Section](t, w)
}

func TestSectionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)
	created := createResume(t, srv, token, map[string]any{"title": "Sections"})

	summary := addSection(t, srv, token, created.ID, map[string]any{"type": "summary"})
	assert.Equal(t, "summary", summary.Type)
	assert.JSONEq(t, string(resume.DefaultContent(resume.TypeSummary)), string(summary.Content))

	w := srv.do(t, http.MethodPost, fmt.Sprintf("/v1/resumes/%d/sections", created.ID), token, map[string]any{"type": "hobbies"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, fmt.Sprintf("/v1/resumes/%d/sections", created.ID), token, map[string]any{"type": "summary", "content": []int{1}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	path := fmt.Sprintf("/v1/sections/%d", summary.ID)
	w = srv.do(t, http.MethodPatch, path, token, map[string]any{"content": map[string]any{"text": "Builder of engines"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"text":"Builder of engines"}`, string(decode[resume.Section](t, w).Content))

	w = srv.do(t, http.MethodPut, path, token, map[string]any{"type": "custom"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPut, path, token, map[string]any{"type": "custom", "content": map[string]any{"title": "Talks", "text": "GopherCon"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "custom", decode[resume.Section](t, w).Type)

	w = srv.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSectionNotVisibleToOtherUser(t *testing.T) {
	srv := newTestServer(t)
	_, owner := srv.seedUser(t, "owner", "password123", false)
	_, other := srv.seedUser(t, "other", "password123", false)
	created := createResume(t, srv, owner, map[string]any{"title": "Mine"})
	section := addSection(t, srv, owner, created.ID, map[string]any{"type": "skills"})

	w := srv.do(t, http.MethodGet, fmt.Sprintf("/v1/sections/%d", section.ID), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderReportsPartialFailure(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)
	created := createResume(t, srv, token, map[string]any{"title": "Order"})
	a := addSection(t, srv, token, created.ID, map[string]any{"type": "summary"})
	b := addSection(t, srv, token, created.ID, map[string]any{"type": "skills"})
	path := fmt.Sprintf("/v1/resumes/%d/sections/reorder", created.ID)

	w := srv.do(t, http.MethodPost, path, token, map[string]any{"section_ids": []uint{b.ID, a.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ok := decode[editor.BatchResult](t, w)
	assert.Equal(t, []uint{b.ID, a.ID}, ok.Succeeded)
	assert.Empty(t, ok.Failed)

	w = srv.do(t, http.MethodGet, fmt.Sprintf("/v1/resumes/%d/sections", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sections := decode[[]resume.Section](t, w)
	require.Len(t, sections, 2)
	assert.Equal(t, b.ID, sections[0].ID)

	w = srv.do(t, http.MethodPost, path, token, map[string]any{"section_ids": []uint{a.ID, 9999}})
	require.Equal(t, http.StatusMultiStatus, w.Code)
	partial := decode[editor.BatchResult](t, w)
	assert.Equal(t, []uint{a.ID}, partial.Succeeded)
	require.Len(t, partial.Failed, 1)
	assert.Equal(t, uint(9999), partial.Failed[0].ID)

	w = srv.do(t, http.MethodPost, path, token, map[string]any{"section_ids": []uint{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStyleEndpoints(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)
	created := createResume(t, srv, token, map[string]any{"title": "Styled"})
	path := fmt.Sprintf("/v1/resumes/%d/style", created.ID)

	w := srv.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resume.DefaultStyle(), decode[resume.Style](t, w))

	w = srv.do(t, http.MethodPatch, path, token, map[string]any{"primary_color": "#336699"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	patched := decode[resume.Style](t, w)
	assert.Equal(t, "#336699", patched.PrimaryColor)
	assert.Equal(t, "Inter", patched.FontFamily)

	w = srv.do(t, http.MethodPatch, path, token, map[string]any{"primary_color": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPut, path, token, map[string]any{"primary_color": "#112233", "font_family": "Georgia", "font_size": 12})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, resume.Style{PrimaryColor: "#112233", FontFamily: "Georgia", FontSize: 12}, decode[resume.Style](t, w))

	w = srv.do(t, http.MethodPut, path, token, map[string]any{"primary_color": "#112233"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
