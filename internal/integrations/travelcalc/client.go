package travelcalc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент сервиса расчета поездки (расстояние, время в пути, доплата)
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: log,
	}
}

func toPoint(l domain.Location) Point {
	return Point{Address: l.Address, Latitude: l.Latitude, Longitude: l.Longitude}
}

// Calculate рассчитывает поездку от базы тенанта до адреса клиента
func (c *Client) Calculate(ctx context.Context, tenantID, serviceID string, origin, destination domain.Location) (domain.TravelData, error) {
	body, err := json.Marshal(CalculateRequest{
		TenantID:    tenantID,
		ServiceID:   serviceID,
		Origin:      toPoint(origin),
		Destination: toPoint(destination),
	})
	if err != nil {
		return domain.TravelData{}, fmt.Errorf("%w: failed to encode request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/internal/travel/calculate", bytes.NewReader(body))
	if err != nil {
		return domain.TravelData{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.TravelData{}, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnprocessableEntity, http.StatusNotFound:
		var e ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return domain.TravelData{}, fmt.Errorf("%w: %s", ErrUnroutable, e.Message)
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.TravelData{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(raw))
	}

	var out CalculateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.TravelData{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}
	if out.DistanceKm < 0 || out.DurationMinutes < 0 || out.Surcharge.IsNegative() {
		return domain.TravelData{}, fmt.Errorf("%w: negative travel figures", ErrInvalidResponse)
	}

	return domain.TravelData{
		Surcharge:       out.Surcharge,
		DistanceKm:      out.DistanceKm,
		DurationMinutes: out.DurationMinutes,
	}, nil
}

// CalculateWithGracefulDegradation рассчитывает поездку, а при любой ошибке
// (недоступность, таймаут, маршрут не найден) возвращает ErrServiceDegraded с нулевыми значениями
func (c *Client) CalculateWithGracefulDegradation(ctx context.Context, tenantID, serviceID string, origin, destination domain.Location) (domain.TravelData, error) {
	data, err := c.Calculate(ctx, tenantID, serviceID, origin, destination)
	if err == nil {
		c.log.Info("Travel calculated for tenant=%s service=%s: %.2f km, %d min, surcharge=%s",
			tenantID, serviceID, data.DistanceKm, data.DurationMinutes, data.Surcharge)
		return data, nil
	}

	if errors.Is(err, ErrUnroutable) {
		c.log.Warn("Travel route not found for tenant=%s service=%s: %v", tenantID, serviceID, err)
	} else {
		c.log.Error("Travel calculator unavailable, applying graceful degradation for tenant=%s service=%s: %v", tenantID, serviceID, err)
	}
	return domain.TravelData{}, fmt.Errorf("%w: tenant=%s, error=%v", ErrServiceDegraded, tenantID, err)
}
