package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swiftride.org/internal/auth"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

const testSecret = "test-secret"

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	codec, err := auth.NewCodec(testSecret, "swiftride")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	svc := auth.NewService(auth.NewMemoryStore(), codec)

	api := New(svc, ReadyProbe{}, "test", WithRateLimit(1000, 1000))

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	// Cookies would satisfy the extractor before the bearer header and make
	// replay assertions ambiguous, so the test client does not keep a jar.
	return &apiClient{
		baseURL: srv.URL,
		client:  &http.Client{},
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func captainPayload(email string) map[string]any {
	return map[string]any{
		"fullname": map[string]string{"firstname": "Nina", "lastname": "Simone"},
		"email":    email,
		"password": "pw1234",
		"vehicle": map[string]any{
			"color":       "red",
			"plate":       "AB123",
			"capacity":    4,
			"vehicleType": "car",
		},
	}
}

func userPayload(email string) map[string]any {
	return map[string]any{
		"fullname": map[string]string{"firstname": "Ada", "lastname": "Lovelace"},
		"email":    email,
		"password": "pw1234",
	}
}

func bearerAuth(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestCaptainRegisterDuplicate(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodPost, "/captains/register", captainPayload("d1@x.com"), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	resp = c.do(http.MethodPost, "/captains/register", captainPayload("d1@x.com"), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "Captain already exists" {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestCaptainLoginSetsCookieAndHidesHash(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodPost, "/captains/register", captainPayload("d1@x.com"), nil)
	resp.Body.Close()

	resp = c.do(http.MethodPost, "/captains/login", map[string]string{
		"email":    "d1@x.com",
		"password": "pw1234",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var tokenCookieSet bool
	for _, ck := range resp.Cookies() {
		if ck.Name == "token" && ck.Value != "" {
			tokenCookieSet = true
		}
	}
	if !tokenCookieSet {
		t.Fatal("expected token cookie on login response")
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "pw1234") || strings.Contains(string(raw), "password") {
		t.Fatalf("login response leaks credential material: %s", raw)
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["token"] == "" || body["captain"] == nil {
		t.Fatalf("expected token and captain in body: %v", body)
	}
}

func TestLoginErrorShapeIdenticalForBothFailureModes(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodPost, "/users/register", userPayload("u1@x.com"), nil)
	resp.Body.Close()

	wrongPw := c.do(http.MethodPost, "/users/login", map[string]string{"email": "u1@x.com", "password": "wrong!"}, nil)
	noUser := c.do(http.MethodPost, "/users/login", map[string]string{"email": "ghost@x.com", "password": "wrong!"}, nil)

	if wrongPw.StatusCode != http.StatusUnauthorized || noUser.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPw.StatusCode, noUser.StatusCode)
	}
	b1 := decodeBody(t, wrongPw)
	b2 := decodeBody(t, noUser)
	if b1["message"] != "Invalid email or password" || b1["message"] != b2["message"] {
		t.Fatalf("error shapes differ: %v vs %v", b1, b2)
	}
}

func TestProfileRequiresToken(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodGet, "/users/profile", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Access denied. No token provided." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestProfileRejectsExpiredTokenBeforeHandler(t *testing.T) {
	c := newTestAPI(t)

	past := time.Now().Add(-48 * time.Hour)
	stale, err := auth.NewCodec(testSecret, "swiftride", auth.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	expired, _, err := stale.Issue("some-id", auth.KindUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	resp := c.do(http.MethodGet, "/users/profile", nil, bearerAuth(expired))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for expired token, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "Unauthorized access. Invalid token." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestProfileNotFoundForOrphanToken(t *testing.T) {
	c := newTestAPI(t)

	codec, err := auth.NewCodec(testSecret, "swiftride")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	orphan, _, err := codec.Issue("no-such-id", auth.KindUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	resp := c.do(http.MethodGet, "/users/profile", nil, bearerAuth(orphan))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["message"] != "User not found." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestLogoutThenReplayFailsAsRevoked(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodPost, "/captains/register", captainPayload("d1@x.com"), nil)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)

	resp = c.do(http.MethodGet, "/captains/profile", nil, bearerAuth(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile before logout: expected 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["captain"] == nil {
		t.Fatalf("expected captain in profile body: %v", body)
	}

	resp = c.do(http.MethodPost, "/captains/logout", nil, bearerAuth(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "Logged out successfully" {
		t.Fatalf("unexpected message: %v", body["message"])
	}

	// The replayed token must fail as revoked, not invalid: it still passes
	// signature and expiry checks.
	resp = c.do(http.MethodGet, "/captains/profile", nil, bearerAuth(token))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("replay: expected 401, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	if body["message"] != "Token is blacklisted. Please login again." {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestRegisterValidation(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodPost, "/captains/register", map[string]any{
		"fullname": map[string]string{"firstname": "N"},
		"email":    "bad",
		"password": "x",
		"vehicle":  map[string]any{"color": "r", "plate": "p", "capacity": 0, "vehicleType": "boat"},
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected errors array, got %v", body)
	}
}

func TestHealthz(t *testing.T) {
	c := newTestAPI(t)

	resp := c.do(http.MethodGet, "/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
}
