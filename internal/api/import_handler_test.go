package api

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeforge/internal/editor"
	"resumeforge/internal/importer"
	"resumeforge/internal/resume"
)

func (s *testServer) upload(t *testing.T, token, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/import/parse", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestImportParseText(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)

	text := "Jane Doe\njane@example.com\n\nSkills\nGo, PostgreSQL, Redis\n"
	w := srv.upload(t, token, "cv.txt", []byte(text))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decode[importer.Result](t, w)
	assert.Equal(t, importer.SourceHeuristic, result.Source)
	require.NotNil(t, result.Data.Contact)
	assert.Equal(t, "jane@example.com", result.Data.Contact.Email)
	assert.Equal(t, "Jane Doe", result.Data.Contact.Name)
}

func TestImportParseRejectsBadUploads(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)

	w := srv.upload(t, token, "cv.exe", []byte("MZ binary"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.upload(t, token, "cv.txt", []byte(strings.Repeat("a", 65*1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/import/parse", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportApplyCreatesSections(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)
	created := createResume(t, srv, token, map[string]any{"title": "Imported"})
	path := fmt.Sprintf("/v1/resumes/%d/import", created.ID)

	parsed := importer.Parsed{
		Contact: &importer.Contact{Name: "Jane Doe", Email: "jane@example.com"},
		Summary: "Backend engineer",
		Experience: []importer.Experience{
			{Company: "Acme", Position: "Engineer", StartDate: "2020", EndDate: "Present"},
		},
		Skills: []string{"Go", "SQL"},
	}
	w := srv.do(t, http.MethodPost, path, token, parsed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[editor.BatchResult](t, w)
	assert.Len(t, result.Succeeded, len(importer.ToSections(parsed)))
	assert.Empty(t, result.Failed)

	w = srv.do(t, http.MethodGet, fmt.Sprintf("/v1/resumes/%d/sections", created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sections := decode[[]resume.Section](t, w)
	require.NotEmpty(t, sections)
	assert.Equal(t, "contact", sections[0].Type)

	w = srv.do(t, http.MethodPost, path, token, importer.Parsed{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportApplyAppendsAfterExistingSections(t *testing.T) {
	srv := newTestServer(t)
	_, token := srv.seedUser(t, "ada", "password123", false)
	created := createResume(t, srv, token, map[string]any{"title": "Existing"})
	sectionsPath := fmt.Sprintf("/v1/resumes/%d/sections", created.ID)

	for _, typ := range []string{"summary", "custom"} {
		w := srv.do(t, http.MethodPost, sectionsPath, token, map[string]any{"type": typ})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	parsed := importer.Parsed{
		Contact: &importer.Contact{Name: "Jane Doe"},
		Skills:  []string{"Go"},
	}
	w := srv.do(t, http.MethodPost, fmt.Sprintf("/v1/resumes/%d/import", created.ID), token, parsed)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = srv.do(t, http.MethodGet, sectionsPath, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sections := decode[[]resume.Section](t, w)

	var types []string
	orders := map[resume.Order]bool{}
	for _, s := range sections {
		types = append(types, s.Type)
		assert.False(t, orders[s.Order], "duplicate order %d", s.Order)
		orders[s.Order] = true
	}
	assert.Equal(t, []string{"summary", "custom", "contact", "skills"}, types)
}
