package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/platefeed/api/internal/middleware"
	"github.com/platefeed/api/internal/model"
	"github.com/platefeed/api/internal/service"
	"github.com/platefeed/api/pkg/jwt"
)

// ============================================================================
// Mock stores
// ============================================================================

// mockUserStore is an in-memory implementation of service.UserRepository
type mockUserStore struct {
	mu      sync.Mutex
	users   map[string]*model.User
	byEmail map[string]string
	byName  map[string]string
	seq     int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]string),
		byName:  make(map[string]string),
	}
}

func (m *mockUserStore) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	user.ID = fmt.Sprintf("user:%d", m.seq)
	if user.Role == "" {
		user.Role = model.UserRoleUser
	}
	user.CreatedOn = time.Now()
	user.UpdatedOn = time.Now()
	m.users[user.ID] = user
	m.byEmail[user.Email] = user.ID
	m.byName[user.Username] = user.ID
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byEmail[email]; ok {
		return m.users[id], nil
	}
	return nil, nil
}

func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[username]; ok {
		return m.users[id], nil
	}
	return nil, nil
}

func (m *mockUserStore) List(ctx context.Context, limit int) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	users := make([]*model.User, 0, len(m.users))
	for i := 1; i <= m.seq; i++ {
		if u, ok := m.users[fmt.Sprintf("user:%d", i)]; ok {
			users = append(users, u)
		}
		if limit > 0 && len(users) >= limit {
			break
		}
	}
	return users, nil
}

func (m *mockUserStore) Update(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) UpdatePassword(ctx context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return service.ErrUserNotFound
	}
	user.Hash = &hash
	return nil
}

func (m *mockUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	return nil
}

// mockTokenStore is an in-memory implementation of service.TokenRepository
type mockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*service.RefreshToken
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{tokens: make(map[string]*service.RefreshToken)}
}

func (m *mockTokenStore) CreateRefreshToken(ctx context.Context, token *service.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.TokenHash] = token
	return nil
}

func (m *mockTokenStore) GetRefreshTokenByHash(ctx context.Context, hash string) (*service.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[hash], nil
}

func (m *mockTokenStore) RevokeRefreshToken(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token, ok := m.tokens[hash]; ok {
		token.Revoked = true
	}
	return nil
}

func (m *mockTokenStore) RevokeAllUserTokens(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (m *mockTokenStore) DeleteExpiredTokens(ctx context.Context) error {
	return nil
}

func (m *mockTokenStore) activeCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, token := range m.tokens {
		if token.UserID == userID && !token.Revoked {
			count++
		}
	}
	return count
}

// ============================================================================
// Test helpers
// ============================================================================

// Generating an RSA key per test is slow, so the package shares one.
var testRSAKey = func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
}()

func setupAuthHandler(t *testing.T) (*AuthHandler, *mockUserStore, *mockTokenStore) {
	t.Helper()

	jwtService := jwt.NewTestService(testRSAKey, "platefeed-test", 15*time.Minute)
	tokenStore := newMockTokenStore()
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService: jwtService,
		TokenRepo:  tokenStore,
	})
	userStore := newMockUserStore()
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userStore,
		TokenService: tokenService,
	})

	return NewAuthHandler(authService), userStore, tokenStore
}

func makeJSONRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withUserContext(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func parseErrorResponse(t *testing.T, body *bytes.Buffer) *model.ProblemDetails {
	t.Helper()
	var problem model.ProblemDetails
	if err := json.NewDecoder(body).Decode(&problem); err != nil {
		t.Fatalf("failed to parse error response: %v", err)
	}
	return &problem
}

func registerUser(t *testing.T, handler *AuthHandler, email, username string) (UserResponse, TokenResponse) {
	t.Helper()

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    email,
		Username: username,
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("register failed with status %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			User  UserResponse  `json:"user"`
			Token TokenResponse `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Data.User, resp.Data.Token
}

// ============================================================================
// Register
// ============================================================================

func TestRegister_ValidInput_ReturnsCreated(t *testing.T) {
	handler, userStore, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			User  UserResponse  `json:"user"`
			Token TokenResponse `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Data.User.Email != "chef@example.com" {
		t.Errorf("expected email chef@example.com, got %q", resp.Data.User.Email)
	}
	if resp.Data.User.Username != "chef" {
		t.Errorf("expected username chef, got %q", resp.Data.User.Username)
	}
	if resp.Data.Token.AccessToken == "" {
		t.Error("expected a non-empty access token")
	}
	if resp.Data.Token.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %q", resp.Data.Token.TokenType)
	}

	stored, _ := userStore.GetByEmail(context.Background(), "chef@example.com")
	if stored == nil {
		t.Fatal("expected user to be persisted")
	}
	if stored.Hash == nil || *stored.Hash == "securepassword123" {
		t.Error("expected password to be stored hashed")
	}
}

func TestRegister_DuplicateEmail_ReturnsBadRequest(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	registerUser(t, handler, "taken@example.com", "first")

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    "taken@example.com",
		Username: "second",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRegister_DuplicateUsername_ReturnsBadRequest(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	registerUser(t, handler, "first@example.com", "samename")

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    "second@example.com",
		Username: "samename",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRegister_InvalidEmail_ReturnsValidationError(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    "not-an-email",
		Username: "chef",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	problem := parseErrorResponse(t, rr.Body)
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "email" {
		t.Errorf("expected a field error on email, got %+v", problem.Errors)
	}
}

func TestRegister_ShortPassword_ReturnsValidationError(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/register", RegisterRequest{
		Email:    "chef@example.com",
		Username: "chef",
		Password: "short",
	})
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}

	problem := parseErrorResponse(t, rr.Body)
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "password" {
		t.Errorf("expected a field error on password, got %+v", problem.Errors)
	}
}

func TestRegister_InvalidBody_ReturnsBadRequest(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRegister_WrongMethod_ReturnsMethodNotAllowed(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/register", nil)
	rr := httptest.NewRecorder()
	handler.Register(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

// ============================================================================
// Login
// ============================================================================

func TestLogin_ValidCredentials_ReturnsTokens(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	registerUser(t, handler, "chef@example.com", "chef")

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", LoginRequest{
		Email:    "chef@example.com",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data struct {
			Token TokenResponse `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Token.AccessToken == "" {
		t.Error("expected a non-empty access token")
	}
	if resp.Data.Token.RefreshToken == "" {
		t.Error("expected a non-empty refresh token")
	}
}

func TestLogin_WrongPassword_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	registerUser(t, handler, "chef@example.com", "chef")

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", LoginRequest{
		Email:    "chef@example.com",
		Password: "wrongpassword123",
	})
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestLogin_UnknownEmail_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/login", LoginRequest{
		Email:    "nobody@example.com",
		Password: "securepassword123",
	})
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

// ============================================================================
// Refresh
// ============================================================================

func TestRefresh_ValidToken_RotatesTokens(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	_, token := registerUser(t, handler, "chef@example.com", "chef")

	req := makeJSONRequest(http.MethodPost, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: token.RefreshToken,
	})
	rr := httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data TokenResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.RefreshToken == "" || resp.Data.RefreshToken == token.RefreshToken {
		t.Error("expected a new refresh token after rotation")
	}

	// Single use: replaying the old token must fail
	req = makeJSONRequest(http.MethodPost, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: token.RefreshToken,
	})
	rr = httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d on token reuse, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRefresh_MissingToken_ReturnsValidationError(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/refresh", RefreshRequest{})
	rr := httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestRefresh_UnknownToken_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/refresh", RefreshRequest{
		RefreshToken: "deadbeefdeadbeefdeadbeefdeadbeef",
	})
	rr := httptest.NewRecorder()
	handler.Refresh(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

// ============================================================================
// Logout
// ============================================================================

func TestLogout_RevokesAllTokens(t *testing.T) {
	handler, _, tokenStore := setupAuthHandler(t)

	user, _ := registerUser(t, handler, "chef@example.com", "chef")

	if count := tokenStore.activeCount(user.ID); count != 1 {
		t.Fatalf("expected 1 active token before logout, got %d", count)
	}

	req := withUserContext(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), user.ID)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rr.Code)
	}
	if count := tokenStore.activeCount(user.ID); count != 0 {
		t.Errorf("expected 0 active tokens after logout, got %d", count)
	}
}

func TestLogout_Unauthenticated_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

// ============================================================================
// Me
// ============================================================================

func TestMe_ReturnsCurrentUser(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	user, _ := registerUser(t, handler, "chef@example.com", "chef")

	req := withUserContext(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), user.ID)
	rr := httptest.NewRecorder()
	handler.Me(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp struct {
		Data UserResponse `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ID != user.ID {
		t.Errorf("expected user ID %q, got %q", user.ID, resp.Data.ID)
	}
	if resp.Data.Email != "chef@example.com" {
		t.Errorf("expected email chef@example.com, got %q", resp.Data.Email)
	}
}

func TestMe_Unauthenticated_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	rr := httptest.NewRecorder()
	handler.Me(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestMe_UnknownUser_ReturnsNotFound(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := withUserContext(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), "user:missing")
	rr := httptest.NewRecorder()
	handler.Me(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

// ============================================================================
// ChangePassword
// ============================================================================

func TestChangePassword_ValidRequest_UpdatesHashAndRevokesTokens(t *testing.T) {
	handler, userStore, tokenStore := setupAuthHandler(t)

	user, _ := registerUser(t, handler, "chef@example.com", "chef")
	before, _ := userStore.GetByID(context.Background(), user.ID)
	oldHash := *before.Hash

	req := withUserContext(makeJSONRequest(http.MethodPost, "/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "securepassword123",
		NewPassword:     "evenmoresecure456",
	}), user.ID)
	rr := httptest.NewRecorder()
	handler.ChangePassword(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d: %s", http.StatusNoContent, rr.Code, rr.Body.String())
	}

	after, _ := userStore.GetByID(context.Background(), user.ID)
	if *after.Hash == oldHash {
		t.Error("expected password hash to change")
	}
	if count := tokenStore.activeCount(user.ID); count != 0 {
		t.Errorf("expected all tokens revoked after password change, got %d active", count)
	}
}

func TestChangePassword_WrongCurrentPassword_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	user, _ := registerUser(t, handler, "chef@example.com", "chef")

	req := withUserContext(makeJSONRequest(http.MethodPost, "/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "notmypassword123",
		NewPassword:     "evenmoresecure456",
	}), user.ID)
	rr := httptest.NewRecorder()
	handler.ChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestChangePassword_Unauthenticated_ReturnsUnauthorized(t *testing.T) {
	handler, _, _ := setupAuthHandler(t)

	req := makeJSONRequest(http.MethodPost, "/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "securepassword123",
		NewPassword:     "evenmoresecure456",
	})
	rr := httptest.NewRecorder()
	handler.ChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}
