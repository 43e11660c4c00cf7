package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"tokenchat/pkg/config"

	"github.com/sirupsen/logrus"
)

const (
	tokenLookupTimeout   = 10 * time.Second
	projectLookupTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
)

type tokenEnvelope struct {
	Success bool       `json:"success"`
	Data    *TokenData `json:"data"`
}

type projectEnvelope struct {
	Success bool         `json:"success"`
	Data    *ProjectData `json:"data"`
}

type projectRequest struct {
	Symbol string `json:"symbol"`
}

type Client struct {
	httpClient        *http.Client
	tokenAPIBaseURL   string
	projectAPIBaseURL string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient:        &http.Client{},
		tokenAPIBaseURL:   strings.TrimRight(cfg.TokenAPIBaseURL, "/"),
		projectAPIBaseURL: strings.TrimRight(cfg.ProjectAPIBaseURL, "/"),
	}
}

// GetTokenData fetches the token listing by slug. A nil result with a nil
// error never occurs; callers that only care about presence should go
// through GetTokenInfo.
func (c *Client) GetTokenData(ctx context.Context, tokenSlug string) (*TokenData, error) {
	ctx, cancel := context.WithTimeout(ctx, tokenLookupTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/tokens/%s", c.tokenAPIBaseURL, tokenSlug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build token data request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	var envelope tokenEnvelope
	if err := c.doJSON(req, &envelope); err != nil {
		return nil, fmt.Errorf("token data lookup for %q failed: %w", tokenSlug, err)
	}

	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("token data lookup for %q returned no data", tokenSlug)
	}

	return envelope.Data, nil
}

// GetProjectData fetches the aggregated project profile by upper-cased
// token symbol.
func (c *Client) GetProjectData(ctx context.Context, tokenSymbol string) (*ProjectData, error) {
	ctx, cancel := context.WithTimeout(ctx, projectLookupTimeout)
	defer cancel()

	body, err := json.Marshal(projectRequest{Symbol: tokenSymbol})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project data request: %w", err)
	}

	url := c.projectAPIBaseURL + "/projects/get-by-symbol"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build project data request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	var envelope projectEnvelope
	if err := c.doJSON(req, &envelope); err != nil {
		return nil, fmt.Errorf("project data lookup for %q failed: %w", tokenSymbol, err)
	}

	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("project data lookup for %q returned no data", tokenSymbol)
	}

	return envelope.Data, nil
}

// GetTokenInfo runs both provider lookups concurrently and combines the
// results. Each lookup degrades to an absent half on failure; the call
// itself never fails.
func (c *Client) GetTokenInfo(ctx context.Context, tokenSlug string) Snapshot {
	var (
		wg       sync.WaitGroup
		snapshot Snapshot
	)

	wg.Add(2)

	go func() {
		defer wg.Done()
		tokenData, err := c.GetTokenData(ctx, tokenSlug)
		if err != nil {
			logrus.Errorf("Token data unavailable for %s: %v", tokenSlug, err)
			return
		}
		snapshot.Token = tokenData
	}()

	go func() {
		defer wg.Done()
		projectData, err := c.GetProjectData(ctx, strings.ToUpper(tokenSlug))
		if err != nil {
			logrus.Errorf("Project data unavailable for %s: %v", tokenSlug, err)
			return
		}
		snapshot.Project = projectData
	}()

	wg.Wait()

	logrus.Infof("Market snapshot for %s: token=%t project=%t",
		tokenSlug, snapshot.HasTokenData(), snapshot.HasProjectData())

	return snapshot
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed response payload: %w", err)
	}

	return nil
}
