// Package client is a Go consumer for the MedTrap API. It wraps the HTTP
// surface, tracks the login session and builds the merged directory view
// the storefront renders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultBaseURL is the hosted API. Override with MEDTRAP_API_BASE or
// WithBaseURL.
const DefaultBaseURL = "https://medi-trap-backend-2.onrender.com"

// Envelope is the API's single response shape. Data stays raw until the
// caller knows what to decode it into.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Count      *int            `json:"count,omitempty"`
	Token      string          `json:"token,omitempty"`
	User       json.RawMessage `json:"user,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Errors     []FieldError    `json:"errors,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// FieldError mirrors a server-side validation failure
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// Pagination mirrors the server's list metadata
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// APIError is a non-2xx response decoded from the envelope
type APIError struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s", e.StatusCode, e.Message)
	}
	if len(e.Errors) > 0 {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Errors[0].Param, e.Errors[0].Msg)
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}

// Client talks to the MedTrap API
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Session *Session
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API host
func WithBaseURL(base string) Option {
	return func(c *Client) { c.BaseURL = base }
}

// WithHTTPClient swaps the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

// WithSessionStore persists the session through the given store
func WithSessionStore(store Store) Option {
	return func(c *Client) { c.Session = NewSession(store) }
}

// New creates a Client. The base URL resolves in order: options,
// MEDTRAP_API_BASE, then the hosted default.
func New(opts ...Option) *Client {
	c := &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Session: NewSession(NewMemStore()),
	}
	if base := os.Getenv("MEDTRAP_API_BASE"); base != "" {
		c.BaseURL = base
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and decodes the envelope. Non-2xx statuses and
// envelopes with success=false both surface as *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}) (*Envelope, error) {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The stored token is stale. Drop the session so the UI can
		// route back to login.
		c.Session.Clear()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message, Errors: env.Errors}
	}
	return &env, nil
}

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the register request body
type Registration struct {
	MedicalName   string  `json:"medicalName"`
	OwnerName     string  `json:"ownerName"`
	Email         string  `json:"email"`
	ContactNo     string  `json:"contactNo"`
	Address       Address `json:"address"`
	DrugLicenseNo string  `json:"drugLicenseNo"`
	Password      string  `json:"password"`
}

// Address mirrors the server-side postal address
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// UserSnapshot is the identity slice returned by auth endpoints
type UserSnapshot struct {
	ID          string `json:"id"`
	MedicalName string `json:"medicalName"`
	OwnerName   string `json:"ownerName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	IsVerified  bool   `json:"isVerified"`
}

// Login authenticates and stores the token and user in the session
func (c *Client) Login(ctx context.Context, creds Credentials) (*UserSnapshot, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, creds)
	if err != nil {
		return nil, err
	}
	return c.adoptAuth(env)
}

// Register creates an account and logs the session in
func (c *Client) Register(ctx context.Context, reg Registration) (*UserSnapshot, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, reg)
	if err != nil {
		return nil, err
	}
	return c.adoptAuth(env)
}

func (c *Client) adoptAuth(env *Envelope) (*UserSnapshot, error) {
	var user UserSnapshot
	if err := json.Unmarshal(env.User, &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	c.Session.SetLoggedIn(env.Token, user)
	return &user, nil
}

// Me refreshes the stored user snapshot from the server
func (c *Client) Me(ctx context.Context) (*UserSnapshot, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}
	var user UserSnapshot
	if err := json.Unmarshal(env.User, &user); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	c.Session.SetUser(user)
	return &user, nil
}

// Logout tells the server goodbye and clears the local session. The local
// session clears even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.Session.Clear()
	return err
}

// ListQuery carries the common list parameters
type ListQuery struct {
	Search    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Extra     url.Values
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", fmt.Sprint(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", fmt.Sprint(q.Limit))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	for key, vals := range q.Extra {
		for _, val := range vals {
			v.Add(key, val)
		}
	}
	return v
}

// ListCompanies fetches one page of companies
func (c *Client) ListCompanies(ctx context.Context, q ListQuery) ([]Company, *Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/company", q.values(), nil)
	if err != nil {
		return nil, nil, err
	}
	var companies []Company
	if err := json.Unmarshal(env.Data, &companies); err != nil {
		return nil, nil, fmt.Errorf("decoding companies: %w", err)
	}
	return companies, env.Pagination, nil
}

// ListMedicines fetches one page of medicines
func (c *Client) ListMedicines(ctx context.Context, q ListQuery) ([]Medicine, *Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/medicine", q.values(), nil)
	if err != nil {
		return nil, nil, err
	}
	var medicines []Medicine
	if err := json.Unmarshal(env.Data, &medicines); err != nil {
		return nil, nil, fmt.Errorf("decoding medicines: %w", err)
	}
	return medicines, env.Pagination, nil
}

// ListStockists fetches one page of stockists
func (c *Client) ListStockists(ctx context.Context, q ListQuery) ([]Stockist, *Pagination, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/stockist", q.values(), nil)
	if err != nil {
		return nil, nil, err
	}
	var stockists []Stockist
	if err := json.Unmarshal(env.Data, &stockists); err != nil {
		return nil, nil, fmt.Errorf("decoding stockists: %w", err)
	}
	return stockists, env.Pagination, nil
}
