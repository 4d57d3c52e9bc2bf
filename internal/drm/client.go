// Package drm реализует брокер лицензий: пересылку непрозрачных
// лицензионных запросов к серверам DRM-вендора и возврат их ответов
// байт-в-байт.
//
// Тело запроса и ответа нигде не разбирается, не перекодируется и не
// логируется: оно может содержать конфиденциальные DRM-данные.
package drm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/magabrotheeeer/video-access-gateway/internal/config"
)

// ErrUpstream возвращается при любой ошибке вендора: сетевой сбой,
// таймаут или неуспешный HTTP-статус. Запросы не ретраятся: выдача
// лицензии не обязана быть идемпотентной.
var ErrUpstream = errors.New("upstream license service error")

// ErrUnknownSystem возвращается для неизвестной DRM-системы.
var ErrUnknownSystem = errors.New("unknown drm system")

// DefaultContentType используется, когда вендор не вернул Content-Type.
const DefaultContentType = "application/octet-stream"

const defaultTimeout = 10 * time.Second

// Client — HTTP-клиент лицензионных серверов DRM-вендора.
type Client struct {
	licenseURLs map[System]string
	certURLs    map[System]string
	apiKey      string
	httpClient  *http.Client
}

// NewClient создаёт клиент по настройкам апстрима.
// Таймаут ограничивает весь round trip к вендору.
func NewClient(cfg config.DRMUpstream) *Client {
	timeout := cfg.TimeoutUpstream
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		licenseURLs: map[System]string{
			SystemWidevine:  cfg.WidevineLicenseURL,
			SystemPlayReady: cfg.PlayReadyLicenseURL,
			SystemFairPlay:  cfg.FairPlayLicenseURL,
		},
		certURLs: map[System]string{
			SystemFairPlay: cfg.FairPlayCertURL,
		},
		apiKey:     cfg.VendorAPIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ForwardLicense пересылает лицензионный запрос вендору и возвращает
// тело ответа и его Content-Type без изменений.
func (c *Client) ForwardLicense(ctx context.Context, system System, payload []byte) ([]byte, string, error) {
	const op = "drm.ForwardLicense"

	url, ok := c.licenseURLs[system]
	if !ok || url == "" {
		return nil, "", fmt.Errorf("%s: %w: %s", op, ErrUnknownSystem, system)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", DefaultContentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.roundTrip(op, req)
}

// GetCertificate запрашивает у вендора статический сертификат DRM-системы.
func (c *Client) GetCertificate(ctx context.Context, system System) ([]byte, string, error) {
	const op = "drm.GetCertificate"

	url, ok := c.certURLs[system]
	if !ok || url == "" {
		return nil, "", fmt.Errorf("%s: %w: %s", op, ErrUnknownSystem, system)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.roundTrip(op, req)
}

func (c *Client) roundTrip(op string, req *http.Request) ([]byte, string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("%s: %w: unexpected status %s", op, ErrUpstream, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w: %v", op, ErrUpstream, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	return body, contentType, nil
}
