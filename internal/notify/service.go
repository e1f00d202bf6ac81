package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gatekeeper/internal/config"
	"gatekeeper/internal/services"
)

// ServiceName tags every published event with the emitting service.
const ServiceName = "digitized_av_validation"

const userAgent = "Gatekeeper/0.1.0"

// Outcome values carried in the outcome attribute.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// Service defines the notification surface exposed to the validator.
type Service interface {
	NotifySuccess(ctx context.Context, format, refid, sourceFilename string) error
	NotifyFailure(ctx context.Context, format, refid, sourceFilename string, cause error) error
}

// NewService builds a publisher backed by HTTP when configured. When no
// endpoint is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.Endpoint)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &httpService{
		endpoint: strings.TrimRight(endpoint, "/"),
		topic:    cfg.Notifications.Topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type event struct {
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes"`
}

type httpService struct {
	endpoint string
	topic    string
	client   *http.Client
}

func (h *httpService) NotifySuccess(ctx context.Context, format, refid, sourceFilename string) error {
	data := event{
		Message: fmt.Sprintf("%s package %s successfully validated", format, sourceFilename),
		Attributes: map[string]string{
			"format":  format,
			"refid":   refid,
			"service": ServiceName,
			"outcome": OutcomeSuccess,
		},
	}
	return h.publish(ctx, data)
}

func (h *httpService) NotifyFailure(ctx context.Context, format, refid, sourceFilename string, cause error) error {
	message := "unknown failure"
	if cause != nil {
		message = strings.TrimSpace(cause.Error())
	}
	data := event{
		Message: fmt.Sprintf("%s package %s is invalid", format, sourceFilename),
		Attributes: map[string]string{
			"format":  format,
			"refid":   refid,
			"service": ServiceName,
			"outcome": OutcomeFailure,
			"error":   services.Kind(cause),
			"message": message,
		},
	}
	return h.publish(ctx, data)
}

func (h *httpService) publish(ctx context.Context, data event) error {
	if h == nil || h.client == nil {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	url := h.endpoint + "/" + h.topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build publish request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notification endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySuccess(context.Context, string, string, string) error { return nil }

func (noopService) NotifyFailure(context.Context, string, string, string, error) error { return nil }
