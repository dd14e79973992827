package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jatrackr/jatrackr-backend/internal/domain"
	"github.com/jatrackr/jatrackr-backend/internal/service"
	"github.com/jatrackr/jatrackr-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type jobHandlerFixture struct {
	e           *echo.Echo
	userRepo    *testutil.MockUserRepository
	jobRepo     *testutil.MockJobDataRepository
	storageRepo *testutil.MockAttachmentRepository
	handler     *JobDataHandler
}

func newJobHandlerFixture() *jobHandlerFixture {
	userRepo := testutil.NewMockUserRepository()
	jobRepo := testutil.NewMockJobDataRepository()
	storageRepo := testutil.NewMockAttachmentRepository()
	jobService := service.NewJobDataService(jobRepo, userRepo)
	attachmentService := service.NewAttachmentService(storageRepo, jobRepo)
	return &jobHandlerFixture{
		e:           echo.New(),
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		storageRepo: storageRepo,
		handler:     NewJobDataHandler(jobService, attachmentService),
	}
}

func (f *jobHandlerFixture) addOwner(username string) *domain.User {
	user := &domain.User{Username: username, Email: username + "@example.com"}
	f.userRepo.AddUser(user)
	return user
}

func (f *jobHandlerFixture) addJob(owner *domain.User, title string) *domain.JobData {
	job := &domain.JobData{UserID: owner.ID, JobTitle: title, Company: "Acme"}
	f.jobRepo.AddJob(job)
	owner.JobDocumentIDs = append(owner.JobDocumentIDs, job.ID)
	return job
}

func TestGetJobs_Handler(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	f.addJob(owner, "Engineer")
	f.addJob(owner, "Analyst")

	req := httptest.NewRequest(http.MethodGet, "/api/jobdata/jobs/all", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.GetJobs(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []JobDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(response))
	}
}

func TestGetJob_Handler(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	salary := decimal.NewFromFloat(95000.50)
	job := &domain.JobData{UserID: owner.ID, JobTitle: "Engineer", Company: "Acme", Salary: &salary}
	f.jobRepo.AddJob(job)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.Hex())

	if err := f.handler.GetJob(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response JobDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Salary == nil || *response.Salary != "95000.50" {
		t.Errorf("Expected salary '95000.50', got %v", response.Salary)
	}
}

func TestGetJob_Handler_MalformedID(t *testing.T) {
	f := newJobHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := f.handler.GetJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetJobsForUser_Handler(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	f.addJob(owner, "Engineer")
	f.addJob(owner, "Analyst")

	// A stored job without a reference entry stays invisible.
	orphan := &domain.JobData{UserID: owner.ID, JobTitle: "Hidden", Company: "Acme"}
	f.jobRepo.AddJob(orphan)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := f.handler.GetJobsForUser(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []JobDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("Expected 2 jobs from the reference list, got %d", len(response))
	}
}

func TestGetJobsForUser_Handler_UnknownUser(t *testing.T) {
	f := newJobHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")

	if err := f.handler.GetJobsForUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetJobsForUser_Handler_EmptyList(t *testing.T) {
	f := newJobHandlerFixture()
	f.addOwner("alice")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")

	if err := f.handler.GetJobsForUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for empty list, got %d", rec.Code)
	}
}

func TestCreateJob_Handler_Success(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")

	body := `{"userId":"` + owner.ID.Hex() + `","jobTitle":"Engineer","company":"Acme","jobPostingId":"ACME-1","salary":"95000.50"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobdata", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.CreateJob(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response JobDataResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.UserID != owner.ID.Hex() {
		t.Errorf("Expected owner backlink, got %s", response.UserID)
	}
	if response.Salary == nil || *response.Salary != "95000.50" {
		t.Errorf("Expected salary echoed back, got %v", response.Salary)
	}

	if len(owner.JobDocumentIDs) != 1 {
		t.Errorf("Expected reference recorded on owner, got %v", owner.JobDocumentIDs)
	}

	location := rec.Header().Get(echo.HeaderLocation)
	if location != "/api/jobdata/"+response.ID {
		t.Errorf("Expected Location header, got '%s'", location)
	}
}

func TestCreateJob_Handler_OwnerNotFound(t *testing.T) {
	f := newJobHandlerFixture()

	body := `{"userId":"` + primitive.NewObjectID().Hex() + `","jobTitle":"Engineer","company":"Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobdata", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.CreateJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if len(f.jobRepo.Jobs) != 0 {
		t.Errorf("Expected no insertion, got %d jobs", len(f.jobRepo.Jobs))
	}
}

func TestCreateJob_Handler_MalformedUserID(t *testing.T) {
	f := newJobHandlerFixture()

	body := `{"userId":"not-hex","jobTitle":"Engineer","company":"Acme"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobdata", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.CreateJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateJob_Handler_InvalidSalary(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")

	body := `{"userId":"` + owner.ID.Hex() + `","jobTitle":"Engineer","company":"Acme","salary":"lots"}`
	req := httptest.NewRequest(http.MethodPost, "/api/jobdata", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)

	if err := f.handler.CreateJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestUpdateJob_Handler(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	job := f.addJob(owner, "Engineer")

	body := `{"company":"Globex"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.Hex())

	if err := f.handler.UpdateJob(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	updated, _ := f.jobRepo.GetByID(job.ID)
	if updated.Company != "Globex" {
		t.Errorf("Expected company updated, got %s", updated.Company)
	}
}

func TestUpdateJob_Handler_NotFound(t *testing.T) {
	f := newJobHandlerFixture()

	body := `{"company":"Globex"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	if err := f.handler.UpdateJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteJob_Handler(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	job := f.addJob(owner, "Engineer")

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.Hex())

	if err := f.handler.DeleteJob(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	if len(f.jobRepo.Jobs) != 0 {
		t.Errorf("Expected job removed, %d remain", len(f.jobRepo.Jobs))
	}
	if len(owner.JobDocumentIDs) != 0 {
		t.Errorf("Expected reference removed, got %v", owner.JobDocumentIDs)
	}
}

func TestDeleteJob_Handler_ReleasesAttachments(t *testing.T) {
	f := newJobHandlerFixture()
	owner := f.addOwner("alice")
	job := f.addJob(owner, "Engineer")

	// Seed a stored object plus its metadata entry.
	f.storageRepo.Objects["jobdata/"+job.ID.Hex()+"/att-1/original.pdf"] = []byte("data")
	job.Attachments = []domain.Attachment{{
		ID:        "att-1",
		FileName:  "resume.pdf",
		ObjectKey: "jobdata/" + job.ID.Hex() + "/att-1/original.pdf",
	}}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(job.ID.Hex())

	if err := f.handler.DeleteJob(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(f.storageRepo.Objects) != 0 {
		t.Errorf("Expected stored objects released, %d remain", len(f.storageRepo.Objects))
	}
}

func TestDeleteJob_Handler_NotFound(t *testing.T) {
	f := newJobHandlerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	if err := f.handler.DeleteJob(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}
