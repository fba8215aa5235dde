// Package rosterapi is the HTTP client of the students REST API.
package rosterapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-roster/core"
	"github.com/trezcool/masomo-roster/core/student"
)

const (
	studentsPath  = "/api/students"
	loginPath     = "/api/auth/login"
	maxErrBodyLen = 4 << 10
)

var (
	ErrNotAuthenticated = core.ErrNotAuthenticated
	ErrUnavailable      = core.ErrUnavailable
)

// RemoteError is a non-2xx answer of the API.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("roster API: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("roster API: %d %s", e.StatusCode, e.Message)
}

// NotFound reports a 404 answer.
func (e *RemoteError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

var (
	IsUnavailable = core.IsUnavailable
	IsNotFound    = core.IsNotFound
)

// TokenSource returns the saved bearer token ("" when logged out).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	timeout time.Duration
	tokens  TokenSource
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
}

// unavailable wraps a transport failure so that errors.Cause yields ErrUnavailable.
type unavailable struct {
	op  string
	err error
}

func (u *unavailable) Error() string { return u.op + ": " + ErrUnavailable.Error() + ": " + u.err.Error() }
func (u *unavailable) Cause() error  { return ErrUnavailable }
func (u *unavailable) Unwrap() error { return u.err }

func (c *Client) do(ctx context.Context, method, path string, authed bool, in, out interface{}) error {
	op := method + " " + path

	var token string
	if authed {
		var err error
		if token, err = c.tokens.Token(ctx); err != nil {
			return &unavailable{op: op, err: err}
		}
		if token == "" {
			return ErrNotAuthenticated
		}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "%s: encoding body", op)
		}
		body = bytes.NewReader(data)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "%s: building request", op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &unavailable{op: op, err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrap(decodeRemoteError(resp), op)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &unavailable{op: op, err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// decodeRemoteError reads {"error": "..."} or {"field": "message"} bodies.
func decodeRemoteError(resp *http.Response) error {
	rErr := &RemoteError{StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyLen))

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		rErr.Message = strings.TrimSpace(string(data))
		return rErr
	}
	if msg, ok := fields["error"].(string); ok {
		rErr.Message = msg
		return rErr
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, fields[k]))
	}
	rErr.Message = strings.Join(parts, "; ")
	return rErr
}

func (c *Client) ListStudents(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	if err := c.do(ctx, http.MethodGet, studentsPath, true, nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = 0 // assigned by the API
	var created student.Student
	if err := c.do(ctx, http.MethodPost, studentsPath, true, s, &created); err != nil {
		return student.Student{}, err
	}
	return created, nil
}

// UpdateStudent sends every editable field, empty ones included, so that cleared fields are cleared remotely too.
func (c *Client) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	var updated student.Student
	path := studentsPath + "/" + strconv.Itoa(s.ID)
	if err := c.do(ctx, http.MethodPut, path, true, student.FormFrom(s), &updated); err != nil {
		return student.Student{}, err
	}
	return updated, nil
}

func (c *Client) DeleteStudent(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, studentsPath+"/"+strconv.Itoa(id), true, nil, nil)
}

type (
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, loginPath, false, LoginRequest{username, password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("login: empty token")
	}
	return resp.Token, nil
}
