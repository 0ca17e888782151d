// Package hhclient implements ports.HHClient against the real HH REST API:
// OAuth2 token exchange/refresh, vacancy search, and the apply call with its
// fallback endpoint and error classification (§6.1).
package hhclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/infrastructure/config"
)

// RequestTimeout bounds every outbound HH call (§5: HTTP 15-20s).
const RequestTimeout = 18 * time.Second

// readRetries bounds how many times a transient failure on an idempotent GET
// is retried before giving up and surfacing the error to the caller. This is
// intra-call robustness against a dropped connection or a transient 5xx, a
// different concern from the dispatcher's own persisted retry schedule for
// apply attempts.
const readRetries = 2

// transientReadBackOff builds a short backoff for retrying idempotent GETs.
func transientReadBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 5 * time.Second
	return backoff.WithMaxRetries(b, readRetries)
}

type transientStatusError struct {
	status int
	body   string
}

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("status=%d body=%s", e.status, e.body)
}

func isTransientStatus(status int) bool {
	return status >= 500 || status == http.StatusTooManyRequests
}

// Client is the typed HH REST API wrapper (C3).
type Client struct {
	cfg        config.HHConfig
	httpClient *http.Client
	oauthCfg   oauth2.Config
	limiter    *rate.Limiter
}

// New builds a Client. ratePerSecond bounds outbound request rate against
// HH's published limits; burst allows short bursts above the steady rate.
func New(cfg config.HHConfig, ratePerSecond float64, burst int) *Client {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: RequestTimeout},
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"applicant_resumes", "offline"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthBaseURL + "/authorize",
				TokenURL: cfg.OAuthBaseURL + "/token",
			},
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// AuthorizeURL builds the HH OAuth authorize URL for one Telegram user,
// with state="tg:<messengerID>:<nonce>" (§6.1).
func (c *Client) AuthorizeURL(messengerID, nonce string) string {
	state := fmt.Sprintf("tg:%s:%s", messengerID, nonce)
	return c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeCode trades an authorization code for an access/refresh token pair.
func (c *Client) ExchangeCode(ctx context.Context, code string) (ports.TokenSet, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"code":          {code},
		"redirect_uri":  {c.cfg.RedirectURI},
	}
	return c.tokenRequest(ctx, form)
}

// RefreshToken exchanges a refresh token for a fresh access/refresh pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (ports.TokenSet, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"refresh_token": {refreshToken},
	}
	return c.tokenRequest(ctx, form)
}

func (c *Client) tokenRequest(ctx context.Context, form url.Values) (ports.TokenSet, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return ports.TokenSet{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthCfg.Endpoint.TokenURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return ports.TokenSet{}, fmt.Errorf("hhclient: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.TokenSet{}, fmt.Errorf("hhclient: token request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.TokenSet{}, fmt.Errorf("hhclient: token endpoint status=%d body=%s", resp.StatusCode, string(body))
	}

	var raw struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return ports.TokenSet{}, fmt.Errorf("hhclient: decode token response: %w", err)
	}

	return ports.TokenSet{
		AccessToken:  raw.AccessToken,
		RefreshToken: raw.RefreshToken,
		TokenType:    raw.TokenType,
		ExpiresIn:    time.Duration(raw.ExpiresIn) * time.Second,
	}, nil
}

// GetMe fetches the linked account's profile.
func (c *Client) GetMe(ctx context.Context, accessToken string) (ports.Profile, error) {
	var raw struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.doGet(ctx, accessToken, c.cfg.APIBaseURL+"/me", &raw); err != nil {
		return ports.Profile{}, fmt.Errorf("hhclient: get me: %w", err)
	}
	return ports.Profile{
		ExternalID:  raw.ID,
		DisplayName: (raw.FirstName + " " + raw.LastName),
	}, nil
}

// GetResumes fetches the linked account's résumé list.
func (c *Client) GetResumes(ctx context.Context, accessToken string) ([]ports.ResumeSummary, error) {
	var raw struct {
		Items []struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Area   struct{ Name string `json:"name"` } `json:"area"`
			Access struct{ Type struct{ ID string `json:"id"` } `json:"type"` } `json:"access"`
			UpdatedAt string `json:"updated_at"`
		} `json:"items"`
	}
	if err := c.doGet(ctx, accessToken, c.cfg.APIBaseURL+"/resumes/mine", &raw); err != nil {
		return nil, fmt.Errorf("hhclient: get resumes: %w", err)
	}

	out := make([]ports.ResumeSummary, 0, len(raw.Items))
	for _, item := range raw.Items {
		updated, _ := time.Parse(time.RFC3339, item.UpdatedAt)
		out = append(out, ports.ResumeSummary{
			ExternalID:    item.ID,
			Title:         item.Title,
			Area:          item.Area.Name,
			Visibility:    item.Access.Type.ID,
			LastUpdatedAt: updated,
		})
	}
	return out, nil
}

// SearchVacancies queries /vacancies with the canonical query string plus
// pagination, returning only the vacancy ids (the only field the scheduler
// needs).
func (c *Client) SearchVacancies(ctx context.Context, accessToken, canonicalQS string, page, perPage int) (ports.SearchResult, error) {
	values, _ := url.ParseQuery(canonicalQS)
	if values == nil {
		values = url.Values{}
	}
	values.Set("page", strconv.Itoa(page-1))
	values.Set("per_page", strconv.Itoa(perPage))

	var raw struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Found int `json:"found"`
	}
	reqURL := c.cfg.APIBaseURL + "/vacancies?" + values.Encode()
	if err := c.doGet(ctx, accessToken, reqURL, &raw); err != nil {
		return ports.SearchResult{}, fmt.Errorf("hhclient: search vacancies: %w", err)
	}

	ids := make([]int64, 0, len(raw.Items))
	for _, item := range raw.Items {
		id, err := strconv.ParseInt(item.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ports.SearchResult{VacancyIDs: ids, Found: raw.Found}, nil
}

// Apply submits a negotiation, falling back to the per-vacancy endpoint on
// ambiguous failures, and classifies the outcome for the dispatcher's state
// machine (§6.1, §7).
func (c *Client) Apply(ctx context.Context, accessToken string, vacancyID int64, resumeID string, coverLetter *string) (ports.ApplyResult, error) {
	form := url.Values{
		"vacancy_id": {strconv.FormatInt(vacancyID, 10)},
		"resume_id":  {resumeID},
	}
	if coverLetter != nil && *coverLetter != "" {
		form.Set("message", *coverLetter)
	}

	status, body, err := c.doPostForm(ctx, accessToken, c.cfg.APIBaseURL+"/negotiations", form)
	if err != nil {
		return ports.ApplyResult{Outcome: ports.ApplyRetryable, ResponseBody: err.Error()}, nil
	}
	if isAmbiguousFailure(status) {
		fallbackURL := fmt.Sprintf("%s/vacancies/%d/negotiations", c.cfg.APIBaseURL, vacancyID)
		status, body, err = c.doPostForm(ctx, accessToken, fallbackURL, form)
		if err != nil {
			return ports.ApplyResult{Outcome: ports.ApplyRetryable, ResponseBody: err.Error()}, nil
		}
	}

	return classify(status, body), nil
}

func classify(status int, body string) ports.ApplyResult {
	switch {
	case status >= 200 && status < 300:
		return ports.ApplyResult{Outcome: ports.ApplySuccess}
	case status == http.StatusUnauthorized:
		return ports.ApplyResult{Outcome: ports.ApplyUnauthorized, ResponseBody: body}
	case status == http.StatusConflict || containsAny(body, "already_applied"):
		return ports.ApplyResult{Outcome: ports.ApplyAlreadyApplied, ResponseBody: body}
	case status == http.StatusNotFound || containsAny(body, "vacancy_not_found"):
		return ports.ApplyResult{Outcome: ports.ApplyNonRetryable, NonRetryable: ports.ReasonVacancyNotFound, ResponseBody: body}
	case containsAny(body, "resume_not_found"):
		return ports.ApplyResult{Outcome: ports.ApplyNonRetryable, NonRetryable: ports.ReasonResumeNotFound, ResponseBody: body}
	case containsAny(body, "test_required"):
		return ports.ApplyResult{Outcome: ports.ApplyNonRetryable, NonRetryable: ports.ReasonTestRequired, ResponseBody: body}
	case containsAny(body, "letter_required"):
		return ports.ApplyResult{Outcome: ports.ApplyNonRetryable, NonRetryable: ports.ReasonLetterRequired, ResponseBody: body}
	case status == http.StatusTooManyRequests || status >= 500:
		return ports.ApplyResult{Outcome: ports.ApplyRetryable, ResponseBody: body}
	default:
		return ports.ApplyResult{Outcome: ports.ApplyRetryable, ResponseBody: body}
	}
}

func isAmbiguousFailure(status int) bool {
	return status == http.StatusBadRequest || status == http.StatusForbidden
}

func containsAny(haystack, needle string) bool {
	return len(needle) > 0 && len(haystack) >= len(needle) && bytes.Contains([]byte(haystack), []byte(needle))
}

func (c *Client) doGet(ctx context.Context, accessToken, reqURL string, out any) error {
	var body []byte

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		c.setHeaders(req, accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &transientStatusError{status: resp.StatusCode, body: string(respBody)}
			if isTransientStatus(resp.StatusCode) {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		body = respBody
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(transientReadBackOff(), ctx)); err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) doPostForm(ctx context.Context, accessToken, reqURL string, form url.Values) (status int, body string, err error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return 0, "", err
	}
	c.setHeaders(req, accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}
	text := string(raw)
	if len(text) > 500 {
		text = text[:500]
	}
	return resp.StatusCode, text, nil
}

func (c *Client) setHeaders(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

var _ ports.HHClient = (*Client)(nil)
