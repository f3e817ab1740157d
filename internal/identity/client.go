package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	// Identity Provider держит уникальность email. Дубликат создания -
	// не фатальная ошибка: вызывающий обязан перечитать по email.
	ErrIdentityExists = errors.New("identity already exists")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrProvider       = errors.New("identity provider error")
)

// Identity - учетная запись в Identity Provider.
type Identity struct {
	ID             string            `json:"id"`
	Email          string            `json:"email"`
	EmailConfirmed bool              `json:"email_confirmed"`
	Attributes     map[string]string `json:"attributes"`
}

// CreateParams - параметры создания identity через admin API.
type CreateParams struct {
	Email          string            `json:"email"`
	Password       string            `json:"password"`
	EmailConfirmed bool              `json:"email_confirmed"`
	Attributes     map[string]string `json:"attributes"`
}

// Client - клиент admin API провайдера идентичности. Каждый вызов -
// отдельная операция, кросс-табличных транзакций провайдер не дает.
type Client interface {
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	Create(ctx context.Context, params *CreateParams) (*Identity, error)
	VerifyPassword(ctx context.Context, email, password string) (*Identity, error)
}

type HTTPClient struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewHTTPClient(baseURL, serviceKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// FindByEmail ищет identity по email (регистр - как хранит провайдер).
func (c *HTTPClient) FindByEmail(ctx context.Context, email string) (*Identity, error) {
	u := fmt.Sprintf("%s/admin/identities?email=%s", c.baseURL, url.QueryEscape(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, body)
	}

	var list struct {
		Identities []Identity `json:"identities"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}

	for i := range list.Identities {
		if list.Identities[i].Email == email {
			return &list.Identities[i], nil
		}
	}
	return nil, ErrIdentityNotFound
}

// Create создает identity. 409/422 от провайдера означает, что email
// уже занят - возвращаем ErrIdentityExists.
func (c *HTTPClient) Create(ctx context.Context, params *CreateParams) (*Identity, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/admin/identities", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, ErrIdentityExists
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, body)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	return &identity, nil
}

// VerifyPassword проверяет пару email/пароль (вход в конце signup).
func (c *HTTPClient) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	payload, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/token?grant_type=password", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadCredentials
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, body)
	}

	var result struct {
		Identity Identity `json:"identity"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	return &result.Identity, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", "application/json")
}
