package middlewarectx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/video-access-gateway/internal/lib/access"
	"github.com/magabrotheeeer/video-access-gateway/internal/models"
)

type AccountProviderMock struct {
	mock.Mock
}

func (m *AccountProviderMock) Me(ctx context.Context, accountUID string) (*models.Account, error) {
	args := m.Called(ctx, accountUID)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func TestRequireTier(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name           string
		tier           access.Tier
		ctxUID         any
		setupMock      func(*AccountProviderMock)
		wantStatusCode int
		wantError      string
	}{
		{
			name:   "active premium subscription reaches drm content",
			tier:   access.TierDRM,
			ctxUID: "uid-1",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-1").Return(&models.Account{
					UID:                "uid-1",
					Role:               models.RoleUser,
					SubscriptionType:   models.SubscriptionPremium,
					SubscriptionExpiry: &future,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "admin bypasses subscription checks",
			tier:   access.TierDRM,
			ctxUID: "uid-admin",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-admin").Return(&models.Account{
					UID:              "uid-admin",
					Role:             models.RoleAdmin,
					SubscriptionType: models.SubscriptionFree,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "expired premium subscription denied",
			tier:   access.TierDRM,
			ctxUID: "uid-2",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-2").Return(&models.Account{
					UID:                "uid-2",
					Role:               models.RoleUser,
					SubscriptionType:   models.SubscriptionPremium,
					SubscriptionExpiry: &past,
				}, nil).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "you do not have access to this content",
		},
		{
			name:   "free subscription denied drm content",
			tier:   access.TierDRM,
			ctxUID: "uid-3",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-3").Return(&models.Account{
					UID:              "uid-3",
					Role:             models.RoleUser,
					SubscriptionType: models.SubscriptionFree,
				}, nil).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "you do not have access to this content",
		},
		{
			name:   "basic tier open to any account",
			tier:   access.TierBasic,
			ctxUID: "uid-3",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-3").Return(&models.Account{
					UID:              "uid-3",
					Role:             models.RoleUser,
					SubscriptionType: models.SubscriptionFree,
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing identity",
			tier:           access.TierDRM,
			ctxUID:         nil,
			setupMock:      func(_ *AccountProviderMock) {},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "missing or invalid token",
		},
		{
			name:   "account lookup failed",
			tier:   access.TierDRM,
			ctxUID: "uid-gone",
			setupMock: func(m *AccountProviderMock) {
				m.On("Me", mock.Anything, "uid-gone").
					Return(nil, errors.New("account not found")).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "missing or invalid token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providerMock := new(AccountProviderMock)
			tt.setupMock(providerMock)

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireTier(tt.tier, providerMock, newNoopLogger())(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/content/videos", nil)
			if tt.ctxUID != nil {
				req = req.WithContext(context.WithValue(req.Context(), AccountUID, tt.ctxUID))
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			if tt.wantError != "" {
				var got map[string]any
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantError, got["error"])
			}

			providerMock.AssertExpectations(t)
		})
	}
}
