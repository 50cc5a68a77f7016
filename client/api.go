package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"github.com/DBall8/enotes"
)

// Response is the envelope every server endpoint answers with, plus the
// fields GET /api fills in.
type Response struct {
	Successful        bool   `json:"successful"`
	SessionExpired    bool   `json:"sessionExpired"`
	UserAlreadyExists bool   `json:"userAlreadyExists"`
	Message           string `json:"message"`

	Username      string             `json:"username"`
	Notes         []*enotes.Note     `json:"notes"`
	Pages         []*enotes.NotePage `json:"pages"`
	RecreatedPage *enotes.NotePage   `json:"recreatedPage"`
}

// API is the HTTP half of a client session. The session cookie issued by
// login lives in the jar and rides along on every later call.
type API struct {
	baseURL string
	http    *http.Client
}

func NewAPI(baseURL string) (*API, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &API{
		baseURL: baseURL,
		http:    &http.Client{Jar: jar},
	}, nil
}

func (a *API) Login(ctx context.Context, username, password string) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func (a *API) Register(ctx context.Context, username, password string) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/newuser", map[string]string{
		"username": username,
		"password": password,
	})
}

func (a *API) Logout(ctx context.Context) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/logout", nil)
}

func (a *API) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/changepassword", map[string]string{
		"oldpassword": oldPassword,
		"newpassword": newPassword,
	})
}

func (a *API) GetNotes(ctx context.Context) (*Response, error) {
	return a.do(ctx, http.MethodGet, "/api", nil)
}

func (a *API) CreateNote(ctx context.Context, note *enotes.Note, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/api", noteBody(note, socketID))
}

func (a *API) UpdateNote(ctx context.Context, note *enotes.Note, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodPut, "/api", noteBody(note, socketID))
}

func (a *API) DeleteNote(ctx context.Context, id, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodDelete, "/api", map[string]string{
		"id":       id,
		"socketid": socketID,
	})
}

func (a *API) CreatePage(ctx context.Context, page *enotes.NotePage, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodPost, "/notepage", pageBody(page, socketID))
}

func (a *API) UpdatePage(ctx context.Context, page *enotes.NotePage, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodPut, "/notepage", pageBody(page, socketID))
}

func (a *API) DeletePage(ctx context.Context, id, socketID string) (*Response, error) {
	return a.do(ctx, http.MethodDelete, "/notepage", map[string]string{
		"id":       id,
		"socketid": socketID,
	})
}

func (a *API) do(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var response Response
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("could not decode response: %v", err)
	}

	if res.StatusCode != http.StatusOK {
		msg := response.Message
		if msg == "" {
			msg = res.Status
		}
		return &response, fmt.Errorf("%s %s: %s", method, path, msg)
	}

	return &response, nil
}

func noteBody(note *enotes.Note, socketID string) interface{} {
	return struct {
		*enotes.Note
		SocketID string `json:"socketid"`
	}{note, socketID}
}

func pageBody(page *enotes.NotePage, socketID string) interface{} {
	return struct {
		*enotes.NotePage
		SocketID string `json:"socketid"`
	}{page, socketID}
}
