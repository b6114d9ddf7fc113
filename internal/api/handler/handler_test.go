package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/camtauxe/nmsu-cfr/internal/dto"
	"github.com/camtauxe/nmsu-cfr/internal/model"
	"github.com/camtauxe/nmsu-cfr/internal/service"
	pkgerrors "github.com/camtauxe/nmsu-cfr/pkg/errors"
	"github.com/camtauxe/nmsu-cfr/pkg/jwt"
	"github.com/camtauxe/nmsu-cfr/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult      *dto.TokenResponse
	loginErr         error
	logoutErr        error
	getCurrentResult *dto.UserResponse
	getCurrentErr    error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, _ *jwt.Claims) error {
	return m.logoutErr
}
func (m *mockAuthService) GetCurrentUser(_ context.Context, _ string) (*dto.UserResponse, error) {
	return m.getCurrentResult, m.getCurrentErr
}

// ── Mock CFRService ──

type mockCFRService struct {
	submitResult    *dto.SubmitResponse
	submitErr       error
	coursesResult   []dto.CourseResponse
	coursesErr      error
	savingsResult   []dto.SavingsResponse
	savingsErr      error
	revisionsResult []dto.RevisionResponse
	revisionsErr    error
}

func (m *mockCFRService) SubmitCourses(_ context.Context, _ *model.Actor, _ *dto.SubmitCoursesRequest) (*dto.SubmitResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockCFRService) SubmitSavings(_ context.Context, _ *model.Actor, _ *dto.SubmitSavingsRequest) (*dto.SubmitResponse, error) {
	return m.submitResult, m.submitErr
}
func (m *mockCFRService) CurrentCourses(_ context.Context, _ string) ([]dto.CourseResponse, error) {
	return m.coursesResult, m.coursesErr
}
func (m *mockCFRService) CurrentSavings(_ context.Context, _ string) ([]dto.SavingsResponse, error) {
	return m.savingsResult, m.savingsErr
}
func (m *mockCFRService) Revisions(_ context.Context, _ string) ([]dto.RevisionResponse, error) {
	return m.revisionsResult, m.revisionsErr
}

// ── Mock ApprovalService ──

type mockApprovalService struct {
	approveResult *dto.ApprovalResult
	approveErr    error
	commitErr     error
	summaryResult *dto.SummaryResponse
	summaryErr    error
}

func (m *mockApprovalService) ApproveCourses(_ context.Context, _ *model.Actor, _ *dto.ApproveCoursesRequest) (*dto.ApprovalResult, error) {
	return m.approveResult, m.approveErr
}
func (m *mockApprovalService) ApproveSavings(_ context.Context, _ *model.Actor, _ *dto.ApproveSavingsRequest) (*dto.ApprovalResult, error) {
	return m.approveResult, m.approveErr
}
func (m *mockApprovalService) CommitFunds(_ context.Context, _ *dto.CommitRequest) error {
	return m.commitErr
}
func (m *mockApprovalService) Summary(_ context.Context) (*dto.SummaryResponse, error) {
	return m.summaryResult, m.summaryErr
}

// ── Mock SemesterService ──

type mockSemesterService struct {
	listResult   []dto.SemesterResponse
	listErr      error
	activeResult *dto.SemesterResponse
	activeErr    error
	addResult    *dto.SemesterResponse
	addErr       error
	setActiveErr error
}

func (m *mockSemesterService) List(_ context.Context) ([]dto.SemesterResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockSemesterService) GetActive(_ context.Context) (*dto.SemesterResponse, error) {
	return m.activeResult, m.activeErr
}
func (m *mockSemesterService) Add(_ context.Context, _ *dto.AddSemesterRequest) (*dto.SemesterResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockSemesterService) SetActive(_ context.Context, _ *dto.SetActiveSemesterRequest) error {
	return m.setActiveErr
}

// ── Mock UserService ──

type mockUserService struct {
	addResult   *dto.UserResponse
	addErr      error
	changeErr   error
	deleteErr   error
	usersResult []string
	usersErr    error
	deptsResult []string
	deptsErr    error
}

func (m *mockUserService) AddUser(_ context.Context, _ *dto.AddUserRequest) (*dto.UserResponse, error) {
	return m.addResult, m.addErr
}
func (m *mockUserService) ChangePassword(_ context.Context, _ string, _ *dto.ChangePasswordRequest) error {
	return m.changeErr
}
func (m *mockUserService) DeleteUser(_ context.Context, _ *model.Actor, _ string) error {
	return m.deleteErr
}
func (m *mockUserService) ListUsernames(_ context.Context) ([]string, error) {
	return m.usersResult, m.usersErr
}
func (m *mockUserService) ListDepartments(_ context.Context) ([]string, error) {
	return m.deptsResult, m.deptsErr
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSummary(_ context.Context) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set("username", "chead")
	c.Set("role", "submitter")
	c.Set("dept_name", "Computer Science")
	c.Set("claims", &jwt.Claims{
		Username:  "chead",
		Role:      "submitter",
		DeptName:  "Computer Science",
		TokenType: "access",
		RegisteredClaims: jwtv5.RegisteredClaims{
			ID:        "test-jti",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(15 * time.Minute)),
		},
	})
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login_Success(t *testing.T) {
	mock := &mockAuthService{
		loginResult: &dto.TokenResponse{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			ExpiresIn:    900,
		},
	}
	h := NewAuthHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "chead",
		Password: "cfr_pass",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestAuthHandler_Login_BadJSON(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{loginErr: service.ErrInvalidCredentials})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", jsonBody(dto.LoginRequest{
		Username: "chead",
		Password: "wrong",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 11001 {
		t.Errorf("expected error code 11001, got %d", resp.Code)
	}
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)

	r := gin.New()
	r.POST("/auth/logout", func(c *gin.Context) {
		setAuth(c)
		h.Logout(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestAuthHandler_GetCurrentUser_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/auth/me", nil)

	r := gin.New()
	r.GET("/auth/me", h.GetCurrentUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// CFRHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCFRHandler_SubmitCourses_Success(t *testing.T) {
	mock := &mockCFRService{
		submitResult: &dto.SubmitResponse{
			RevisionNum: 0,
			NewCount:    1,
			Message:     "1 courses added or modified:\nCS253\tM01\n",
		},
	}
	h := NewCFRHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/cfr/courses", jsonBody(dto.SubmitCoursesRequest{
		Courses: []dto.CourseRow{{Course: "CS253", Sec: "M01"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/cfr/courses", func(c *gin.Context) {
		setAuth(c)
		h.SubmitCourses(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestCFRHandler_SubmitCourses_ValidationError(t *testing.T) {
	mock := &mockCFRService{
		submitErr: &service.ValidationError{
			Field:   "banner_id",
			Message: "The banner_id field must be a 9-digit number",
		},
	}
	h := NewCFRHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/cfr/courses", jsonBody(dto.SubmitCoursesRequest{
		Courses: []dto.CourseRow{{Course: "CS253", Sec: "M01", BannerID: "12345"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/cfr/courses", func(c *gin.Context) {
		setAuth(c)
		h.SubmitCourses(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "The banner_id field must be a 9-digit number" {
		t.Errorf("校验错误信息应原样透传, got %q", resp.Message)
	}
}

func TestCFRHandler_SubmitCourses_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"RevisionConflict", pkgerrors.ErrRevisionConflict, 409, 14002},
		{"NoActiveSemester", service.ErrNoActiveSemester, 500, 14003},
		{"DeptNotFound", service.ErrDepartmentNotFound, 404, 14004},
		{"InternalError", errors.New("unknown"), 500, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCFRHandler(&mockCFRService{submitErr: tt.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/cfr/courses", jsonBody(dto.SubmitCoursesRequest{
				Courses: []dto.CourseRow{{Course: "CS253", Sec: "M01"}},
			}))
			req.Header.Set("Content-Type", "application/json")

			r := gin.New()
			r.POST("/cfr/courses", func(c *gin.Context) {
				setAuth(c)
				h.SubmitCourses(c)
			})
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := parseResponse(w)
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestCFRHandler_GetCourses_Success(t *testing.T) {
	mock := &mockCFRService{
		coursesResult: []dto.CourseResponse{{Course: "CS253", Sec: "M01"}},
	}
	h := NewCFRHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cfr/courses", nil)

	r := gin.New()
	r.GET("/cfr/courses", func(c *gin.Context) {
		setAuth(c)
		h.GetCourses(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestCFRHandler_GetCourses_Unauthenticated(t *testing.T) {
	h := NewCFRHandler(&mockCFRService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/cfr/courses", nil)

	r := gin.New()
	r.GET("/cfr/courses", h.GetCourses)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ApprovalHandler Tests
// ═══════════════════════════════════════════════════════════

func TestApprovalHandler_ApproveCourses_Success(t *testing.T) {
	mock := &mockApprovalService{
		approveResult: &dto.ApprovalResult{
			Approved: []string{"CS253 M01"},
			Message:  "Courses approved:\nCS253 M01",
		},
	}
	h := NewApprovalHandler(mock)

	code := "CC-2025-001"
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/approver/courses", jsonBody(dto.ApproveCoursesRequest{
		DeptName: "Computer Science",
		Courses: []dto.ApproveCourseEntry{
			{Course: "CS253", Sec: "M01", CommitmentCode: &code, Cost: "1234.33"},
		},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/approver/courses", func(c *gin.Context) {
		setAuth(c)
		h.ApproveCourses(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestApprovalHandler_ApproveCourses_NoCurrentCFR(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{approveErr: service.ErrNoCurrentCFR})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/approver/courses", jsonBody(dto.ApproveCoursesRequest{
		DeptName: "Computer Science",
		Courses:  []dto.ApproveCourseEntry{},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/approver/courses", func(c *gin.Context) {
		setAuth(c)
		h.ApproveCourses(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 15003 {
		t.Errorf("expected code 15003, got %d", resp.Code)
	}
}

func TestApprovalHandler_CommitFunds_ValidationError(t *testing.T) {
	h := NewApprovalHandler(&mockApprovalService{
		commitErr: &service.ValidationError{
			Field:   "amount",
			Message: "The amount field must be a valid float",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/approver/commit", jsonBody(dto.CommitRequest{
		Commitments: []dto.CommitEntry{{DeptName: "Computer Science", Amount: "abc"}},
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/approver/commit", h.CommitFunds)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Message != "The amount field must be a valid float" {
		t.Errorf("校验错误信息应原样透传, got %q", resp.Message)
	}
}

func TestApprovalHandler_Summary_Success(t *testing.T) {
	mock := &mockApprovalService{
		summaryResult: &dto.SummaryResponse{
			Summary: []dto.SummaryRow{
				{DeptName: "Computer Science", TotalCost: 1000, FundsNeeded: 300},
			},
		},
	}
	h := NewApprovalHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/approver/summary", nil)

	r := gin.New()
	r.GET("/approver/summary", h.Summary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SemesterHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSemesterHandler_Add_Success(t *testing.T) {
	mock := &mockSemesterService{
		addResult: &dto.SemesterResponse{Season: "Fall", CalYear: 2025},
	}
	h := NewSemesterHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/semesters", jsonBody(dto.AddSemesterRequest{
		Season: "Fall",
		Year:   "2025",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/semesters", h.Add)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestSemesterHandler_Add_InvalidSeason(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{
		addErr: &service.ValidationError{
			Field:   "season",
			Message: "'season' must be 'Spring', 'Summer' or 'Fall'",
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/semesters", jsonBody(dto.AddSemesterRequest{
		Season: "Winter",
		Year:   "2025",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/semesters", h.Add)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSemesterHandler_GetActive_None(t *testing.T) {
	h := NewSemesterHandler(&mockSemesterService{activeErr: service.ErrNoActiveSemester})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/semesters/active", nil)

	r := gin.New()
	r.GET("/semesters/active", h.GetActive)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// UserHandler Tests
// ═══════════════════════════════════════════════════════════

func TestUserHandler_AddUser_Success(t *testing.T) {
	mock := &mockUserService{
		addResult: &dto.UserResponse{Username: "newsub", Role: "submitter"},
	}
	h := NewUserHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/users", jsonBody(dto.AddUserRequest{
		Username:        "newsub",
		Password:        "secret123",
		PasswordConfirm: "secret123",
		BannerID:        "800152344",
		Role:            "submitter",
		DeptName:        "Computer Science",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.POST("/users", h.AddUser)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestUserHandler_DeleteUser_Self(t *testing.T) {
	h := NewUserHandler(&mockUserService{deleteErr: service.ErrCannotDeleteSelf})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/users/chead", nil)

	r := gin.New()
	r.DELETE("/users/:username", func(c *gin.Context) {
		setAuth(c)
		h.DeleteUser(c)
	})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 12003 {
		t.Errorf("expected code 12003, got %d", resp.Code)
	}
}

func TestUserHandler_ChangePassword_NotFound(t *testing.T) {
	h := NewUserHandler(&mockUserService{changeErr: service.ErrUserNotFound})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/users/ghost/password", jsonBody(dto.ChangePasswordRequest{
		Password:        "secret123",
		PasswordConfirm: "secret123",
	}))
	req.Header.Set("Content-Type", "application/json")

	r := gin.New()
	r.PUT("/users/:username/password", h.ChangePassword)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_Success(t *testing.T) {
	buf := bytes.NewBufferString("excel content")
	mock := &mockExportService{
		buf:      buf,
		filename: "cfr_summary_2_depts.xlsx",
	}
	h := NewExportHandler(mock)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/summary", nil)

	r := gin.New()
	r.GET("/export/summary", h.ExportSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %s", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if cd == "" {
		t.Error("expected Content-Disposition header")
	}
}

func TestExportHandler_NoData(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoData})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/summary", nil)

	r := gin.New()
	r.GET("/export/summary", h.ExportSummary)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
