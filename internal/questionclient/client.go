// Package questionclient fetches raw questions from the question bank.
package questionclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/SAP-F-2025/quiz-player/internal/auth"
	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

const maxBodyBytes = 8 << 20

// Fetcher loads the raw record for one question ID.
type Fetcher interface {
	Fetch(ctx context.Context, questionID string) (*models.RawQuestion, error)
}

type Client struct {
	endpoint string
	http     *http.Client
	creds    auth.CredentialProvider
	logger   utils.Logger
}

func New(endpoint string, creds auth.CredentialProvider, httpClient *http.Client, logger utils.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{endpoint: endpoint, http: httpClient, creds: creds, logger: logger}
}

// Fetch requests the question with the current token. A 401 or 403 is
// retried exactly once with a force-refreshed token.
func (c *Client) Fetch(ctx context.Context, questionID string) (*models.RawQuestion, error) {
	if c.creds == nil || c.creds.CurrentUser() == nil {
		return nil, qerrors.ErrNotAuthenticated
	}

	token, err := c.creds.IDToken(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", qerrors.ErrNotAuthenticated, err)
	}

	resp, err := c.do(ctx, questionID, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		drain(resp)
		c.logger.Info("Question fetch rejected, refreshing token", "question_id", questionID, "status", resp.StatusCode)

		token, err = c.creds.IDToken(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", qerrors.ErrNotAuthenticated, err)
		}
		if resp, err = c.do(ctx, questionID, token); err != nil {
			return nil, err
		}
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &qerrors.FetchError{Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode) + ": " + string(body))}
	}

	var raw models.RawQuestion
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&raw); err != nil {
		return nil, &qerrors.FetchError{Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	if !raw.ID.Present() {
		raw.ID = models.NewScalar(questionID)
	}
	return &raw, nil
}

func (c *Client) do(ctx context.Context, questionID, token string) (*http.Response, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &qerrors.FetchError{Err: err}
	}
	q := u.Query()
	q.Set("id", questionID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &qerrors.FetchError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &qerrors.FetchError{Err: err}
	}
	return resp, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	resp.Body.Close()
}
