package resolve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/storage/repository"
)

// Мок сервиса решения заявок
type UpgradeServiceMock struct {
	mock.Mock
}

func (m *UpgradeServiceMock) Resolve(ctx context.Context, requestID, adminID string, req models.DummyResolveRequest) (*models.UpgradeRequest, error) {
	args := m.Called(ctx, requestID, adminID, req)
	res, _ := args.Get(0).(*models.UpgradeRequest)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestResolveHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockResult     *models.UpgradeRequest
		mockErr        error
		setupMock      bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "approve pending request",
			requestBody: models.DummyResolveRequest{Decision: "approve"},
			mockResult: &models.UpgradeRequest{
				ID:     "req-1",
				Status: models.RequestApproved,
			},
			setupMock:      true,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "already resolved",
			requestBody:    models.DummyResolveRequest{Decision: "reject"},
			mockErr:        repository.ErrAlreadyResolved,
			setupMock:      true,
			wantStatusCode: http.StatusConflict,
			wantError:      "request already resolved",
		},
		{
			name:           "request not found",
			requestBody:    models.DummyResolveRequest{Decision: "approve"},
			mockErr:        repository.ErrNotFound,
			setupMock:      true,
			wantStatusCode: http.StatusNotFound,
			wantError:      "request not found",
		},
		{
			name:           "unknown decision rejected by validation",
			requestBody:    models.DummyResolveRequest{Decision: "maybe"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Decision has an unsupported value",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "storage error",
			requestBody:    models.DummyResolveRequest{Decision: "approve"},
			mockErr:        errors.New("db error"),
			setupMock:      true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "failed to resolve upgrade request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(UpgradeServiceMock)
			handler := New(logger, serviceMock)

			if tt.setupMock {
				serviceMock.On("Resolve", mock.Anything, "req-1", "admin-uid", mock.Anything).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/admin/upgrade-requests/req-1", bytes.NewReader(bodyBytes))

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "req-1")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			ctx = context.WithValue(ctx, middlewarectx.UserUID, "admin-uid")
			req = req.WithContext(ctx)

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "approved", data["status"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
