package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/logger"
	"github.com/annalisadamore06-jpg/es-trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// Manager is a thin retrying HTTP client for the gateway bridge. The bridge
// runs on localhost, so there is no proxy handling; retries cover the bridge
// restarting underneath us.
// -----------------------------------------------------------------------------

type Manager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManager(cfg *models.MConfig, log *logger.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries.
func (nm *Manager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	reqUrl.RawQuery = q.Encode()

	return nm.do("GET", reqUrl.String(), nil)
}

// -----------------------------------------------------------------------------

// Post performs a POST request with a JSON body.
func (nm *Manager) Post(urlStr string, body []byte) ([]byte, error) {
	return nm.do("POST", urlStr, body)
}

// -----------------------------------------------------------------------------

// Delete performs a DELETE request.
func (nm *Manager) Delete(urlStr string) error {
	_, err := nm.do("DELETE", urlStr, nil)
	return err
}

// -----------------------------------------------------------------------------

func (nm *Manager) do(method, urlStr string, body []byte) ([]byte, error) {
	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(i*i) * time.Second) // Exponential backoff
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequest(method, urlStr, reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if nm.Config.Network.UserAgent != "" {
			req.Header.Set("User-Agent", nm.Config.Network.UserAgent)
		}

		resp, err := nm.Client.Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d for %s %s", resp.StatusCode, method, urlStr)
			// Client errors won't heal by retrying
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, lastErr
			}
			continue
		}

		if readErr != nil {
			lastErr = readErr
			continue
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %v", lastErr)
}
