package get_availability

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	getAvailability "github.com/m04kA/SMC-BookingEngine/internal/usecase/get_availability"
)

const (
	msgMissingTenantID  = "отсутствует ID тенанта"
	msgMissingServiceID = "ID услуги обязателен"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStaffID   = "некорректный ID сотрудника"
	msgInvalidInput     = "некорректные параметры запроса"
	msgServiceNotFound  = "услуга не найдена"
	msgServiceInactive  = "услуга недоступна для бронирования"
	msgStaffNotFound    = "сотрудник не найден"
	msgStaffInactive    = "сотрудник недоступен"
	msgDateInPast       = "дата уже прошла"
	msgDateTooFar       = "дата слишком далеко в будущем"
	msgTryLater         = "сервис временно недоступен, повторите попытку позже"
)

type Handler struct {
	useCase GetAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/availability
// Query params: date (required, YYYY-MM-DD), staffId (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /services/{id}/availability - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	serviceID := strings.TrimSpace(mux.Vars(r)["serviceId"])
	if serviceID == "" {
		h.logger.Warn("GET /services/{id}/availability - Missing service ID: tenant=%s", tenantID)
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	query := r.URL.Query()
	dateStr := query.Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /services/{id}/availability - Missing date: tenant=%s, service=%s", tenantID, serviceID)
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}
	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability - Invalid date %q: tenant=%s, service=%s", dateStr, tenantID, serviceID)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	var staffID *string
	if query.Has("staffId") {
		raw := strings.TrimSpace(query.Get("staffId"))
		if raw == "" {
			handlers.RespondBadRequest(w, msgInvalidStaffID)
			return
		}
		staffID = &raw
	}

	resp, err := h.useCase.Execute(r.Context(), &getAvailability.Request{
		TenantID:  tenantID,
		ServiceID: serviceID,
		Date:      date,
		StaffID:   staffID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailability.ErrServiceNotFound):
			h.logger.Warn("GET /services/{id}/availability - Service not found: tenant=%s, service=%s", tenantID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailability.ErrServiceInactive):
			handlers.RespondUnprocessable(w, msgServiceInactive)

		case errors.Is(err, getAvailability.ErrStaffNotFound):
			h.logger.Warn("GET /services/{id}/availability - Staff not found: tenant=%s, staff=%s", tenantID, *staffID)
			handlers.RespondNotFound(w, msgStaffNotFound)

		case errors.Is(err, getAvailability.ErrStaffInactive):
			handlers.RespondUnprocessable(w, msgStaffInactive)

		case errors.Is(err, getAvailability.ErrDateInPast):
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailability.ErrDateTooFarInFuture):
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailability.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, getAvailability.ErrDependencyUnavailable):
			h.logger.Error("GET /services/{id}/availability - Dependency unavailable: tenant=%s, service=%s, error=%v",
				tenantID, serviceID, err)
			handlers.RespondRetryLater(w, handlers.RetryAfterSeconds, msgTryLater)

		default:
			h.logger.Error("GET /services/{id}/availability - Failed to get availability: tenant=%s, service=%s, date=%s, error=%v",
				tenantID, serviceID, dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /services/{id}/availability - Availability retrieved: tenant=%s, service=%s, date=%s, mode=%s, slots=%d",
		tenantID, serviceID, dateStr, resp.Mode, len(resp.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(resp))
}
