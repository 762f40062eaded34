package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sam2op/ProjectEase/internal/adapter/http/handlers/mocks"
	"github.com/Sam2op/ProjectEase/internal/adapter/http/middleware"
	"github.com/Sam2op/ProjectEase/internal/domain/entities"
	"github.com/Sam2op/ProjectEase/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func asPrincipal(userID, username, email, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUsername, username)
		c.Set(middleware.ContextEmail, email)
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func TestRequestHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.POST("/v1/requests", h.Create)

		req := httptest.NewRequest(http.MethodPost, "/v1/requests", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("registered caller comes from the token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.POST("/v1/requests", asPrincipal("acc-1", "sam", "user@test.com", "user"), h.Create)

		uc.EXPECT().Create(gomock.Any(), gomock.AssignableToTypeOf(usecase.CreateRequestInput{})).DoAndReturn(
			func(_ context.Context, input usecase.CreateRequestInput) (entities.Request, error) {
				if input.ClientType != entities.ClientTypeRegistered {
					t.Fatalf("expected registered client, got %s", input.ClientType)
				}
				if input.Account == nil || input.Account.ID != "acc-1" || input.Account.Email != "user@test.com" {
					t.Fatalf("account must come from the token, got %+v", input.Account)
				}
				if input.Guest != nil {
					t.Fatalf("guest contact must not be set for registered callers")
				}
				if input.ProjectID != "proj-1" {
					t.Fatalf("unexpected project id %q", input.ProjectID)
				}
				return entities.Request{ID: "req-1", ClientType: input.ClientType, Account: input.Account, ProjectID: input.ProjectID, Status: entities.StatusPending}, nil
			},
		)

		body := `{"projectId":"proj-1","paymentOption":"advance"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/requests", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["id"] != "req-1" || resp["status"] != "pending" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("anonymous caller is a guest", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.POST("/v1/requests", h.Create)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, input usecase.CreateRequestInput) (entities.Request, error) {
				if input.ClientType != entities.ClientTypeGuest {
					t.Fatalf("expected guest client, got %s", input.ClientType)
				}
				if input.Guest == nil || input.Guest.Email != "guest@test.com" {
					t.Fatalf("guest contact must come from the payload, got %+v", input.Guest)
				}
				if input.CustomProject == nil || input.CustomProject.Name != "Portfolio site" {
					t.Fatalf("custom project must be mapped, got %+v", input.CustomProject)
				}
				return entities.Request{ID: "req-2", ClientType: input.ClientType, Guest: input.Guest, Status: entities.StatusPending}, nil
			},
		)

		body := `{"customProject":{"name":"Portfolio site","description":"static"},"guestInfo":{"name":"Guest","email":"guest@test.com"},"paymentOption":"full"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/requests", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("usecase validation maps to 400", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.POST("/v1/requests", h.Create)

		uc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(entities.Request{}, usecase.ErrProjectConflict)

		body := `{"projectId":"proj-1","customProject":{"name":"x"},"guestInfo":{"name":"Guest","email":"g@test.com"},"paymentOption":"full"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/requests", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestRequestHandler_GetMine(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("lists the caller's requests", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/my", asPrincipal("acc-1", "sam", "user@test.com", "user"), h.GetMine)

		uc.EXPECT().ListByAccountID(gomock.Any(), "acc-1").Return([]entities.Request{{ID: "r1"}, {ID: "r2"}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/my", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var resp []map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if len(resp) != 2 || resp[0]["id"] != "r1" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})

	t.Run("usecase error maps to 500", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/my", asPrincipal("acc-1", "sam", "user@test.com", "user"), h.GetMine)

		uc.EXPECT().ListByAccountID(gomock.Any(), "acc-1").Return(nil, errors.New("db"))

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/my", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
	})
}

func TestRequestHandler_GetByID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("owner can read their request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/:id", asPrincipal("acc-1", "sam", "user@test.com", "user"), h.GetByID)

		uc.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{
			ID: "req-1", ClientType: entities.ClientTypeRegistered,
			Account: &entities.AccountRef{ID: "acc-1", Email: "user@test.com"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/req-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/:id", asPrincipal("acc-2", "eve", "eve@test.com", "user"), h.GetByID)

		uc.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{
			ID: "req-1", ClientType: entities.ClientTypeRegistered,
			Account: &entities.AccountRef{ID: "acc-1", Email: "user@test.com"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/req-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin can read any request", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/:id", asPrincipal("admin-1", "root", "admin@test.com", "admin"), h.GetByID)

		uc.EXPECT().GetByID(gomock.Any(), "req-1").Return(entities.Request{
			ID: "req-1", ClientType: entities.ClientTypeGuest,
			Guest: &entities.GuestContact{Name: "Guest", Email: "guest@test.com"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/req-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.GET("/v1/requests/:id", asPrincipal("acc-1", "sam", "user@test.com", "user"), h.GetByID)

		uc.EXPECT().GetByID(gomock.Any(), "req-9").Return(entities.Request{}, usecase.ErrRequestNotFound)

		req := httptest.NewRequest(http.MethodGet, "/v1/requests/req-9", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})
}

func TestRequestHandler_Update(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("maps the payload onto the update input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.PUT("/v1/requests/:id", asPrincipal("admin-1", "root", "admin@test.com", "admin"), h.Update)

		uc.EXPECT().Update(gomock.Any(), "req-1", gomock.Any(), "admin-1").DoAndReturn(
			func(_ context.Context, _ string, input usecase.UpdateRequestInput, _ string) (entities.Request, error) {
				if input.Status == nil || *input.Status != entities.StatusApproved {
					t.Fatalf("status must be mapped, got %+v", input.Status)
				}
				if input.AdminNotes == nil || *input.AdminNotes != "ok" {
					t.Fatalf("notes must be mapped, got %+v", input.AdminNotes)
				}
				if input.ActualPrice == nil || *input.ActualPrice != 600 {
					t.Fatalf("actual price must be mapped, got %+v", input.ActualPrice)
				}
				if input.GithubLink != nil {
					t.Fatalf("absent fields must stay nil")
				}
				return entities.Request{ID: "req-1", Status: entities.StatusApproved}, nil
			},
		)

		body := `{"status":"approved","adminNotes":"ok","actualPrice":600}`
		req := httptest.NewRequest(http.MethodPut, "/v1/requests/req-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("illegal transition maps to 409", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIRequestUseCase(ctrl)
		h := NewRequestHandler(uc)

		r := gin.New()
		r.PUT("/v1/requests/:id", asPrincipal("admin-1", "root", "admin@test.com", "admin"), h.Update)

		uc.EXPECT().Update(gomock.Any(), "req-1", gomock.Any(), "admin-1").Return(entities.Request{}, usecase.ErrInvalidTransition)

		body := `{"status":"completed"}`
		req := httptest.NewRequest(http.MethodPut, "/v1/requests/req-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["code"] != "INVALID_TRANSITION" {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

func TestMapRequestError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{usecase.ErrInvalidRequestID, http.StatusBadRequest},
		{usecase.ErrInvalidClientType, http.StatusBadRequest},
		{usecase.ErrRequesterConflict, http.StatusBadRequest},
		{usecase.ErrProjectConflict, http.StatusBadRequest},
		{usecase.ErrInvalidPaymentOption, http.StatusBadRequest},
		{usecase.ErrInvalidStatus, http.StatusBadRequest},
		{usecase.ErrInvalidPaymentState, http.StatusBadRequest},
		{usecase.ErrInvalidAmount, http.StatusBadRequest},
		{usecase.ErrRequestNotFound, http.StatusNotFound},
		{usecase.ErrInvalidTransition, http.StatusConflict},
		{usecase.ErrPaymentStateConflict, http.StatusConflict},
		{usecase.ErrConcurrentUpdate, http.StatusConflict},
		{errors.New("other"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		got := mapRequestError(tc.err)
		if got.HTTPStatus != tc.code {
			t.Fatalf("for err %v expected %d got %d", tc.err, tc.code, got.HTTPStatus)
		}
	}
}
