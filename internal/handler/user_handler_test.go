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
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserHandlerFixture() (*echo.Echo, *testutil.MockUserRepository, *UserHandler) {
	e := echo.New()
	userRepo := testutil.NewMockUserRepository()
	userService := service.NewUserService(userRepo)
	return e, userRepo, NewUserHandler(userService)
}

func TestGetUsers_Empty(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetUsers(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response []UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 0 {
		t.Errorf("Expected empty list, got %d entries", len(response))
	}
}

func TestCreateUser_Handler_Success(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	body := `{"username":"winston","email":"winston@continental.org"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateUser(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Username != "winston" {
		t.Errorf("Expected username 'winston', got %s", response.Username)
	}
	if response.ID == "" {
		t.Error("Expected assigned id in response")
	}
	if len(response.JobDocumentIDs) != 0 {
		t.Errorf("Expected empty reference list, got %v", response.JobDocumentIDs)
	}

	location := rec.Header().Get(echo.HeaderLocation)
	if location != "/api/users/"+response.ID {
		t.Errorf("Expected Location header for new user, got '%s'", location)
	}
}

func TestCreateUser_Handler_MissingFields(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	body := `{"username":"winston"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if len(userRepo.Users) != 0 {
		t.Errorf("Expected no user created, got %d", len(userRepo.Users))
	}
}

func TestCreateUser_Handler_Duplicate(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()
	userRepo.AddUser(&domain.User{Username: "winston", Email: "winston@continental.org"})

	body := `{"username":"winston","email":"other@continental.org"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.CreateUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetUserByID_Handler(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(user.ID.Hex())

	if err := handler.GetUserByID(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != user.ID.Hex() {
		t.Errorf("Expected id %s, got %s", user.ID.Hex(), response.ID)
	}
}

func TestGetUserByID_Handler_NotFound(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())

	if err := handler.GetUserByID(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestGetUserByID_Handler_MalformedID(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-an-id")

	if err := handler.GetUserByID(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetUserDetails_Handler_ByEmail(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("key")
	c.SetParamValues("alice@example.com")

	if err := handler.GetUserDetails(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Username != "alice" {
		t.Errorf("Expected user resolved via email, got %s", response.Username)
	}
}

func TestGetUserByQuery_Handler(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	req := httptest.NewRequest(http.MethodGet, "/api/users/user?username=alice&email=alice@example.com", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetUserByQuery(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
}

func TestGetUserByQuery_Handler_NoKeys(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/users/user", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetUserByQuery(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	// The keyless request is rejected before any store access.
	if userRepo.Calls != 0 {
		t.Errorf("Expected no store calls, got %d", userRepo.Calls)
	}
}

func TestReplaceUser_Handler_PreservesID(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	// The payload carries a different id; it must be ignored.
	body := `{"id":"` + primitive.NewObjectID().Hex() + `","username":"alice2","email":"alice2@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("idOrName")
	c.SetParamValues("alice")

	if err := handler.ReplaceUser(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	replaced, err := userRepo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("Expected user under original id, got %v", err)
	}
	if replaced.Username != "alice2" {
		t.Errorf("Expected replaced username, got %s", replaced.Username)
	}
}

func TestReplaceUser_Handler_NotFound(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	body := `{"username":"ghost","email":"ghost@example.com"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("idOrName")
	c.SetParamValues("ghost")

	if err := handler.ReplaceUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestPatchUser_Handler(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	body := `{"email":"patched@example.com"}`
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("idOrName")
	c.SetParamValues(user.ID.Hex())

	if err := handler.PatchUser(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	patched, _ := userRepo.GetByID(user.ID)
	if patched.Email != "patched@example.com" {
		t.Errorf("Expected patched email, got %s", patched.Email)
	}
}

func TestDeleteUser_Handler(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("idOrName")
	c.SetParamValues("alice")

	if err := handler.DeleteUser(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(userRepo.Users) != 0 {
		t.Errorf("Expected user removed, %d remain", len(userRepo.Users))
	}
}

func TestDeleteUser_Handler_NotFound(t *testing.T) {
	e, _, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("idOrName")
	c.SetParamValues("ghost")

	if err := handler.DeleteUser(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteUserByQuery_Handler(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	user := &domain.User{Username: "alice", Email: "alice@example.com"}
	userRepo.AddUser(user)

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user?id="+user.ID.Hex()+"&username=alice", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.DeleteUserByQuery(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if len(userRepo.Users) != 0 {
		t.Errorf("Expected user removed, %d remain", len(userRepo.Users))
	}
}

func TestDeleteUserByQuery_Handler_NoKeys(t *testing.T) {
	e, userRepo, handler := newUserHandlerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.DeleteUserByQuery(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if userRepo.Calls != 0 {
		t.Errorf("Expected no store calls, got %d", userRepo.Calls)
	}
}
