package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-BookingEngine/internal/api/handlers"
	"github.com/m04kA/SMC-BookingEngine/internal/api/middleware"
	createBooking "github.com/m04kA/SMC-BookingEngine/internal/usecase/create_booking"
)

const (
	msgMissingTenantID      = "отсутствует ID тенанта"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidScheduledAt   = "некорректное время начала, ожидается RFC 3339"
	msgInvalidInput         = "некорректные данные бронирования"
	msgServiceNotFound      = "услуга не найдена"
	msgCustomerNotFound     = "клиент не найден"
	msgStaffNotFound        = "сотрудник не найден"
	msgServiceInactive      = "услуга недоступна для бронирования"
	msgStaffInactive        = "сотрудник недоступен"
	msgBookingInPast        = "время бронирования уже прошло"
	msgDateTooFar           = "дата бронирования слишком далеко в будущем"
	msgDateBlocked          = "дата закрыта для бронирования"
	msgBusinessClosed       = "в выбранную дату не работаем"
	msgOutsideBusinessHours = "время бронирования вне часов работы"
	msgHomeVisitUnsupported = "услуга недоступна с выездом"
	msgHomeVisitDisabled    = "выезды сейчас не принимаются"
	msgStaffRequired        = "для услуги нужно выбрать сотрудника"
	msgSlotNotAvailable     = "выбранный временной слот недоступен"
	msgNoStaffAvailable     = "нет свободных сотрудников на выбранное время"
	msgHomeVisitQuota       = "лимит выездов на эту дату исчерпан"
	msgCreateFailed         = "не удалось создать бронирование"
	msgTryLater             = "сервис временно недоступен, повторите попытку позже"
)

type errorResponse struct {
	err     error
	status  int
	message string
}

// Порядок важен: первое совпадение по errors.Is определяет ответ
var errorResponses = []errorResponse{
	{createBooking.ErrInvalidInput, http.StatusBadRequest, msgInvalidInput},
	{createBooking.ErrServiceNotFound, http.StatusNotFound, msgServiceNotFound},
	{createBooking.ErrCustomerNotFound, http.StatusNotFound, msgCustomerNotFound},
	{createBooking.ErrStaffNotFound, http.StatusNotFound, msgStaffNotFound},
	{createBooking.ErrServiceInactive, http.StatusUnprocessableEntity, msgServiceInactive},
	{createBooking.ErrStaffInactive, http.StatusUnprocessableEntity, msgStaffInactive},
	{createBooking.ErrBookingInPast, http.StatusUnprocessableEntity, msgBookingInPast},
	{createBooking.ErrDateTooFarInFuture, http.StatusUnprocessableEntity, msgDateTooFar},
	{createBooking.ErrDateBlocked, http.StatusUnprocessableEntity, msgDateBlocked},
	{createBooking.ErrBusinessClosed, http.StatusUnprocessableEntity, msgBusinessClosed},
	{createBooking.ErrOutsideBusinessHours, http.StatusUnprocessableEntity, msgOutsideBusinessHours},
	{createBooking.ErrHomeVisitNotSupported, http.StatusUnprocessableEntity, msgHomeVisitUnsupported},
	{createBooking.ErrHomeVisitDisabled, http.StatusUnprocessableEntity, msgHomeVisitDisabled},
	{createBooking.ErrStaffRequired, http.StatusUnprocessableEntity, msgStaffRequired},
	{createBooking.ErrSlotNotAvailable, http.StatusConflict, msgSlotNotAvailable},
	{createBooking.ErrNoStaffAvailable, http.StatusConflict, msgNoStaffAvailable},
	{createBooking.ErrHomeVisitQuotaReached, http.StatusConflict, msgHomeVisitQuota},
}

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: tenant=%s, error=%v", tenantID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(tenantID)
	if err != nil {
		h.logger.Warn("POST /bookings - Invalid scheduledAt %q: tenant=%s", req.ScheduledAt, tenantID)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		if errors.Is(err, createBooking.ErrDependencyUnavailable) {
			h.logger.Error("POST /bookings - Dependency unavailable: tenant=%s, service=%s, error=%v",
				tenantID, req.ServiceID, err)
			handlers.RespondRetryLater(w, handlers.RetryAfterSeconds, msgTryLater)
			return
		}

		for _, mapping := range errorResponses {
			if errors.Is(err, mapping.err) {
				h.logger.Warn("POST /bookings - Rejected: tenant=%s, customer=%s, service=%s, status=%d, error=%v",
					tenantID, req.CustomerID, req.ServiceID, mapping.status, err)
				handlers.RespondError(w, mapping.status, mapping.message)
				return
			}
		}

		h.logger.Error("POST /bookings - Failed to create booking: tenant=%s, customer=%s, service=%s, error=%v",
			tenantID, req.CustomerID, req.ServiceID, err)
		handlers.RespondError(w, http.StatusInternalServerError, msgCreateFailed)
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: tenant=%s, booking_id=%s, number=%s",
		tenantID, result.Booking.ID, result.Booking.BookingNumber)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
