package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
)

type archiveServiceMock struct {
	resetResult  *dto.ArchiveResetResult
	resumeResult *dto.ArchiveResetResult
	deleteErr    error
}

func (m *archiveServiceMock) ArchiveAndReset(ctx context.Context, actorID string, req dto.ArchiveResetRequest) (*dto.ArchiveResetResult, error) {
	return m.resetResult, nil
}

func (m *archiveServiceMock) ResumeReset(ctx context.Context, actorID, archiveID string) (*dto.ArchiveResetResult, error) {
	return m.resumeResult, nil
}

func (m *archiveServiceMock) List(ctx context.Context) ([]models.ArchiveSnapshot, error) {
	return nil, nil
}

func (m *archiveServiceMock) Get(ctx context.Context, id string) (*models.ArchiveSnapshot, error) {
	return &models.ArchiveSnapshot{ID: id}, nil
}

func (m *archiveServiceMock) Delete(ctx context.Context, actorID, id string) error {
	return m.deleteErr
}

func adminContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextClaimsKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	return c, w
}

func TestArchiveHandlerResetComplete(t *testing.T) {
	handler := NewArchiveHandler(&archiveServiceMock{
		resetResult: &dto.ArchiveResetResult{ArchiveID: "arch-1", TotalStudents: 5, DeletedCount: 5, ResetStatus: "COMPLETE"},
	})
	c, w := adminContext(t, http.MethodPost, "/archives/reset", dto.ArchiveResetRequest{Semester: "1st", SchoolYear: "2026-2027"})

	handler.Reset(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestArchiveHandlerResetPartialAnswers409(t *testing.T) {
	handler := NewArchiveHandler(&archiveServiceMock{
		resetResult: &dto.ArchiveResetResult{ArchiveID: "arch-1", TotalStudents: 5, DeletedCount: 2, ResetStatus: "PARTIAL"},
	})
	c, w := adminContext(t, http.MethodPost, "/archives/reset", dto.ArchiveResetRequest{Semester: "1st", SchoolYear: "2026-2027"})

	handler.Reset(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope struct {
		Data dto.ArchiveResetResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "arch-1", envelope.Data.ArchiveID)
	assert.Equal(t, 2, envelope.Data.DeletedCount)
}

func TestArchiveHandlerResetMissingFields(t *testing.T) {
	handler := NewArchiveHandler(&archiveServiceMock{})
	c, w := adminContext(t, http.MethodPost, "/archives/reset", dto.ArchiveResetRequest{Semester: "1st"})

	handler.Reset(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveHandlerResumeComplete(t *testing.T) {
	handler := NewArchiveHandler(&archiveServiceMock{
		resumeResult: &dto.ArchiveResetResult{ArchiveID: "arch-1", TotalStudents: 5, DeletedCount: 5, ResetStatus: "COMPLETE"},
	})
	c, w := adminContext(t, http.MethodPost, "/archives/arch-1/resume", nil)
	c.Params = gin.Params{{Key: "id", Value: "arch-1"}}

	handler.Resume(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
