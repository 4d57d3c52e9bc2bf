package login

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
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/video-access-gateway/internal/models"
	authservice "github.com/magabrotheeeer/video-access-gateway/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, rawPassword string) (string, time.Time, *models.Account, error) {
	args := m.Called(ctx, email, rawPassword)
	acc, _ := args.Get(2).(*models.Account)
	return args.String(0), args.Get(1).(time.Time), acc, args.Error(3)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	expiry := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*AuthServiceMock)
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:        "valid login",
			requestBody: Request{Email: "viewer@example.com", Password: "Str0ng#pass"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "viewer@example.com", "Str0ng#pass").
					Return("tok", expiry, &models.Account{
						UID:   "uid-1",
						Email: "viewer@example.com",
						Role:  models.RoleUser,
					}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			setupMock:      func(_ *AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			requestBody:    Request{Email: "viewer@example.com"},
			setupMock:      func(_ *AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "field Password is a required field",
		},
		{
			name:        "wrong password",
			requestBody: Request{Email: "viewer@example.com", Password: "wrong"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "viewer@example.com", "wrong").
					Return("", time.Time{}, nil, authservice.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid credentials",
		},
		{
			name:        "unknown email gets the same answer",
			requestBody: Request{Email: "ghost@example.com", Password: "whatever"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "ghost@example.com", "whatever").
					Return("", time.Time{}, nil, authservice.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantStatus:     "Error",
			wantError:      "invalid credentials",
		},
		{
			name:        "service error",
			requestBody: Request{Email: "viewer@example.com", Password: "Str0ng#pass"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "viewer@example.com", "Str0ng#pass").
					Return("", time.Time{}, nil, errors.New("db error")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "internal service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMock(authMock)

			handler := New(newNoopLogger(), authMock)

			var bodyBytes []byte
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				var err error
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "tok", data["token"])
				assert.Equal(t, expiry.Format(time.RFC3339), data["expiry"])
				user, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "viewer@example.com", user["email"])
			}

			authMock.AssertExpectations(t)
		})
	}
}
