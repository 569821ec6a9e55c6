package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
)

type derivationMock struct {
	facultyID          string
	includeUnvalidated bool
}

func (m *derivationMock) Derive(ctx context.Context, facultyID string, includeUnvalidated bool) (*dto.FacultyScheduleResponse, error) {
	m.facultyID = facultyID
	m.includeUnvalidated = includeUnvalidated
	return &dto.FacultyScheduleResponse{FacultyID: facultyID}, nil
}

func facultyContext(role models.UserRole, target string) (*gin.Context, *httptest.ResponseRecorder, *derivationMock) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	c.Set(middleware.ContextClaimsKey, &models.JWTClaims{UserID: "caller-1", Role: role})
	return c, w, &derivationMock{}
}

func TestFacultyScheduleHandlerGetMine(t *testing.T) {
	c, w, mock := facultyContext(models.RoleFaculty, "/faculty/schedule")
	handler := NewFacultyScheduleHandler(mock)

	handler.GetMine(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "caller-1", mock.facultyID)
	assert.False(t, mock.includeUnvalidated)
}

func TestFacultyScheduleHandlerAdminSeesUnvalidated(t *testing.T) {
	c, w, mock := facultyContext(models.RoleAdmin, "/faculty/fac-1/schedule?include_unvalidated=true")
	c.Params = gin.Params{{Key: "facultyID", Value: "fac-1"}}
	handler := NewFacultyScheduleHandler(mock)

	handler.GetByFaculty(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fac-1", mock.facultyID)
	assert.True(t, mock.includeUnvalidated)
}

func TestFacultyScheduleHandlerFacultyCannotPeekUnvalidated(t *testing.T) {
	c, w, mock := facultyContext(models.RoleFaculty, "/faculty/fac-1/schedule?include_unvalidated=true")
	c.Params = gin.Params{{Key: "facultyID", Value: "fac-1"}}
	handler := NewFacultyScheduleHandler(mock)

	handler.GetByFaculty(c)
	assert.Equal(t, http.StatusOK, w.Code)
	// The flag is admin only and silently ignored for everyone else.
	assert.False(t, mock.includeUnvalidated)
}
