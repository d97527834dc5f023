package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
)

// TenantHeader заголовок с идентификатором тенанта
const TenantHeader = "X-Tenant-ID"

const (
	msgMissingTenantID = "отсутствует ID тенанта"
	msgInvalidTenantID = "некорректный ID тенанта"
)

type contextKey string

const tenantIDKey contextKey = "tenantID"

// Tenant требует заголовок X-Tenant-ID в формате UUID и кладет его в контекст
func Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(TenantHeader))
		if raw == "" {
			handlers.RespondUnauthorized(w, msgMissingTenantID)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			handlers.RespondBadRequest(w, msgInvalidTenantID)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithTenantID(r.Context(), id.String())))
	})
}

// WithTenantID кладет ID тенанта в контекст
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantIDKey, tenantID)
}

// GetTenantID извлекает ID тенанта из контекста
func GetTenantID(ctx context.Context) (string, bool) {
	tenantID, ok := ctx.Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}
