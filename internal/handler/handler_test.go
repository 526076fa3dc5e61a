package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"audittracker/internal/apperror"
	"audittracker/internal/auth"
	"audittracker/internal/middleware"
	"audittracker/internal/model"
	"audittracker/internal/policy"
	"audittracker/internal/repository"
	"audittracker/internal/service"
	"audittracker/pkg/pagination"
	"audittracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

const testUserID = "2b7e1516-28ae-4d2a-a6d2-abf715880901"

type fakeVessels struct {
	service.VesselService
	items   []model.Vessel
	deleted map[uuid.UUID]bool
	lastReq service.ListParams
	actor   service.Actor
}

func (f *fakeVessels) List(_ context.Context, params service.ListParams) (service.Page[model.Vessel], error) {
	f.lastReq = params
	return service.Page[model.Vessel]{Items: f.items, Total: int64(len(f.items))}, nil
}

func (f *fakeVessels) Create(_ context.Context, actor service.Actor, req service.CreateVesselRequest) (*model.Vessel, error) {
	f.actor = actor
	v := model.Vessel{Name: req.Name}
	v.ID = uuid.New()
	return &v, nil
}

func (f *fakeVessels) Delete(_ context.Context, _ service.Actor, id uuid.UUID) error {
	if f.deleted[id] {
		return apperror.InvalidState("vessel is already deleted")
	}
	f.deleted[id] = true
	return nil
}

type fakeFindings struct {
	service.FindingService
	status string
}

func (f *fakeFindings) Close(_ context.Context, _ service.Actor, id uuid.UUID, req service.CloseFindingRequest) (*model.Finding, error) {
	if f.status == model.FindingStatusClosed {
		return nil, apperror.InvalidState("finding is already closed")
	}
	f.status = model.FindingStatusClosed
	fd := &model.Finding{Status: f.status, ClosureRemarks: req.ClosureRemarks}
	fd.ID = id
	return fd, nil
}

func (f *fakeFindings) Reopen(_ context.Context, _ service.Actor, id uuid.UUID, _ service.ReopenFindingRequest) (*model.Finding, error) {
	if f.status == model.FindingStatusOpen {
		return nil, apperror.InvalidState("finding is already open")
	}
	f.status = model.FindingStatusOpen
	fd := &model.Finding{Status: f.status}
	fd.ID = id
	return fd, nil
}

type fakeAttachments struct {
	service.AttachmentService
	uploaded service.UploadInput
	body     string
	removed  map[uuid.UUID]uuid.UUID // attachment id -> owner id
}

func (f *fakeAttachments) Upload(_ context.Context, _ service.Actor, ownerType string, ownerID uuid.UUID, in service.UploadInput) (*model.Attachment, error) {
	f.uploaded = in
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(in.Content)
	f.body = buf.String()
	return &model.Attachment{EntityType: ownerType, EntityID: ownerID, FileName: in.FileName, Size: int64(buf.Len())}, nil
}

func (f *fakeAttachments) Delete(_ context.Context, _ service.Actor, ownerType string, ownerID, attachmentID uuid.UUID) error {
	if ownerType != model.AttachmentEntityFinding {
		return apperror.NotFound("attachment")
	}
	if _, done := f.removed[attachmentID]; done {
		return apperror.NotFound("attachment")
	}
	f.removed[attachmentID] = ownerID
	return nil
}

type fakeActivityLogs struct {
	service.ActivityService
	filter repository.ActivityFilter
	page   pagination.Params
}

func (f *fakeActivityLogs) List(_ context.Context, filter repository.ActivityFilter, page pagination.Params) ([]service.ActivityLogResponse, int64, error) {
	f.filter = filter
	f.page = page
	return []service.ActivityLogResponse{{Action: model.ActionCreate, EntityType: "vessel", UserName: "System"}}, 41, nil
}

type fakeAuth struct {
	service.AuthService
}

func (fakeAuth) Login(_ context.Context, req service.LoginRequest) (*service.LoginResponse, error) {
	if req.Password != "correct-horse" {
		return nil, apperror.Unauthenticated("invalid email or password")
	}
	return &service.LoginResponse{Token: "token", User: &model.User{Email: req.Email}}, nil
}

type testServer struct {
	router   *gin.Engine
	tokens   *auth.TokenManager
	vessels  *fakeVessels
	findings *fakeFindings
	files    *fakeAttachments
	activity *fakeActivityLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := auth.NewTokenManager("handler-test-secret", "audittracker", time.Hour)
	require.NoError(t, err)
	guard := middleware.NewGuard(tokens, policy.Default(), nil)

	s := &testServer{
		tokens:   tokens,
		vessels:  &fakeVessels{items: []model.Vessel{{Name: "MV Aurora"}}, deleted: map[uuid.UUID]bool{}},
		findings: &fakeFindings{status: model.FindingStatusOpen},
		files:    &fakeAttachments{removed: map[uuid.UUID]uuid.UUID{}},
		activity: &fakeActivityLogs{},
	}

	r := gin.New()
	api := r.Group("/api")
	protected := api.Group("", guard.Authenticate())
	users := &UserHandler{authService: fakeAuth{}, guard: guard, loginLimit: middleware.LoginRateLimiter(0)}
	api.POST("/auth/login", users.loginLimit, users.Login)
	NewMasterDataHandler(MasterDataServices{Vessels: s.vessels}, guard).handlers[0].RegisterRoutes(protected)
	NewFindingHandler(s.findings, s.files, guard).RegisterRoutes(protected)
	NewActivityHandler(s.activity, guard).RegisterRoutes(protected)
	s.router = r
	return s
}

func (s *testServer) do(t *testing.T, role, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(t, role))
	}
	return s.serve(t, req)
}

func (s *testServer) token(t *testing.T, role string) string {
	t.Helper()
	token, _, err := s.tokens.Issue(auth.Claims{UserID: testUserID, Role: role, Email: "user@example.com"})
	require.NoError(t, err)
	return token
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var env response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCRUD_RequiresToken(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, "", http.MethodGet, "/api/vessels", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)
}

func TestCRUD_ListWithPaginationAndFilters(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, policy.RoleViewer, http.MethodGet, "/api/vessels?page=2&limit=5&search=%20aur%20&include_deleted=true&status=open", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, response.Meta{Page: 2, Limit: 5, Total: 1}, *env.Meta)
	assert.Equal(t, "aur", s.vessels.lastReq.Search)
	assert.True(t, s.vessels.lastReq.IncludeDeleted)
	assert.Equal(t, 5, s.vessels.lastReq.Offset)
	assert.Equal(t, map[string]string{"status": "open"}, s.vessels.lastReq.Filters)
}

func TestCRUD_CreateAuthorization(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"name": "MV Borealis"}

	w, env := s.do(t, policy.RoleViewer, http.MethodPost, "/api/vessels", body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, env = s.do(t, policy.RoleEncoder, http.MethodPost, "/api/vessels", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, testUserID, s.vessels.actor.UserID.String())
	assert.Equal(t, policy.RoleEncoder, s.vessels.actor.Role)
}

func TestCRUD_BindingErrorsReportJSONFields(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, policy.RoleAdmin, http.MethodPost, "/api/vessels", map[string]string{"imo_number": "9321483"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, apperror.FieldError{Field: "name", Message: "is required"}, env.Error.Details[0])
}

func TestCRUD_BlankNameRejected(t *testing.T) {
	s := newTestServer(t)
	blank := apperror.FieldError{Field: "name", Message: "must not be blank"}

	w, env := s.do(t, policy.RoleAdmin, http.MethodPost, "/api/vessels", map[string]string{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, blank, env.Error.Details[0])

	w, env = s.do(t, policy.RoleAdmin, http.MethodPut, "/api/vessels/"+uuid.NewString(), map[string]string{"name": "\t \n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, blank, env.Error.Details[0])
}

func TestUpdateRequests_OmittedNameIsValid(t *testing.T) {
	assert.NoError(t, binding.Validator.ValidateStruct(&service.UpdateVesselRequest{}))

	blank := " "
	assert.Error(t, binding.Validator.ValidateStruct(&service.UpdateVesselRequest{Name: &blank}))
}

func TestCRUD_DeleteIsAdminOnlyAndRejectsRepeat(t *testing.T) {
	s := newTestServer(t)
	path := "/api/vessels/" + uuid.NewString()

	w, _ := s.do(t, policy.RoleEncoder, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, policy.RoleAdmin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := s.do(t, policy.RoleAdmin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestCRUD_MalformedID(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, policy.RoleAdmin, http.MethodDelete, "/api/vessels/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "id", env.Error.Details[0].Field)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email", env.Error.Details[0].Field)

	w, env = s.do(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "a@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHENTICATED", env.Error.Code)

	w, env = s.do(t, "", http.MethodPost, "/api/auth/login", map[string]string{"email": "a@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestFinding_CloseAndReopenRoles(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	w, _ := s.do(t, policy.RoleViewer, http.MethodPost, "/api/findings/"+id+"/close", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env := s.do(t, policy.RoleEncoder, http.MethodPost, "/api/findings/"+id+"/close", map[string]string{"closure_remarks": "fixed"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = s.do(t, policy.RoleEncoder, http.MethodPost, "/api/findings/"+id+"/close", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	w, _ = s.do(t, policy.RoleEncoder, http.MethodPost, "/api/findings/"+id+"/reopen", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFinding_UploadEvidence(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/findings/"+id.String()+"/evidence", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(t, policy.RoleAuditor))
	w, env := s.serve(t, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "photo.jpg", s.files.uploaded.FileName)
	assert.Equal(t, "jpeg-bytes", s.files.body)
}

func TestFinding_UploadEvidenceRequiresFile(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, policy.RoleAdmin, http.MethodPost, "/api/findings/"+uuid.NewString()+"/evidence", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", env.Error.Details[0].Field)
}

func TestFinding_CloseAndReopenAcceptEmptyChunkedBody(t *testing.T) {
	s := newTestServer(t)
	id := uuid.NewString()

	for _, action := range []string{"close", "reopen"} {
		req := httptest.NewRequest(http.MethodPost, "/api/findings/"+id+"/"+action, http.NoBody)
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token(t, policy.RoleAdmin))

		w, env := s.serve(t, req)
		assert.Equal(t, http.StatusOK, w.Code, action)
		assert.True(t, env.Success, action)
	}
	assert.Equal(t, model.FindingStatusOpen, s.findings.status)
}

func TestFinding_CloseRejectsMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/findings/"+uuid.NewString()+"/close", bytes.NewBufferString(`{"closure_remarks":`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token(t, policy.RoleEncoder))

	w, env := s.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, model.FindingStatusOpen, s.findings.status)
}

func TestFinding_DeleteEvidence(t *testing.T) {
	s := newTestServer(t)
	findingID := uuid.New()
	evidenceID := uuid.New()
	path := "/api/findings/" + findingID.String() + "/evidence/" + evidenceID.String()

	w, env := s.do(t, policy.RoleAuditor, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	assert.Empty(t, s.files.removed)

	w, env = s.do(t, policy.RoleEncoder, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, findingID, s.files.removed[evidenceID])

	w, env = s.do(t, policy.RoleAdmin, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	w, env = s.do(t, policy.RoleAdmin, http.MethodDelete, "/api/findings/"+findingID.String()+"/evidence/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "evidenceId", env.Error.Details[0].Field)
}

func TestActivityLogs(t *testing.T) {
	s := newTestServer(t)
	userID := uuid.NewString()

	w, env := s.do(t, policy.RoleViewer, http.MethodGet, "/api/activity-logs", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	w, env = s.do(t, policy.RoleAdmin, http.MethodGet, "/api/activity-logs?page=3&limit=20&entity_type=vessel&action=CREATE&user_id="+userID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	require.NotNil(t, env.Meta)
	assert.Equal(t, response.Meta{Page: 3, Limit: 20, Total: 41}, *env.Meta)
	assert.Equal(t, repository.ActivityFilter{EntityType: "vessel", Action: "CREATE", UserID: userID}, s.activity.filter)
	assert.Equal(t, 40, s.activity.page.Offset)

	w, env = s.do(t, policy.RoleAdmin, http.MethodGet, "/api/activity-logs?user_id=someone", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id", env.Error.Details[0].Field)
}
