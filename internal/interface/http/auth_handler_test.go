package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/config"
	"github.com/inkwell-labs/inkwell/internal/application"
	"github.com/inkwell-labs/inkwell/internal/domain/entity"
	"github.com/inkwell-labs/inkwell/internal/domain/repository"
	handlers "github.com/inkwell-labs/inkwell/internal/interface/http"
	"github.com/inkwell-labs/inkwell/pkg/tokens"
)

type stubUserRepo struct {
	users map[string]*entity.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]*entity.User{}}
}

func (r *stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) Create(ctx context.Context, u *entity.User) error {
	if _, ok := r.users[u.Email]; ok {
		return repository.ErrAlreadyExists
	}
	u.ID = "user-" + u.Email
	cp := *u
	r.users[u.Email] = &cp
	return nil
}

func (r *stubUserRepo) MarkVerified(ctx context.Context, email string) (*entity.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsVerified = true
	cp := *u
	return &cp, nil
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

type authFixture struct {
	engine *gin.Engine
	repo   *stubUserRepo
	svc    *application.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		AppName:         "inkwell",
		AppBaseURL:      "http://test.local",
		MailSendEnabled: false,
	}
	secrets := tokens.Secrets{Link: "link-secret", Session: "session-secret"}
	repo := newStubUserRepo()
	svc := application.NewAuthService(
		repo,
		tokens.NewLinkCodec(secrets, 10*time.Minute),
		tokens.NewSessionCodec(secrets, 2*time.Hour),
		nil,
		logger,
		cfg,
	)

	h := handlers.NewAuthHandler(svc, logger)
	engine := gin.New()
	api := engine.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/verify/resend", h.ResendVerification)
	api.GET("/auth/verify-email", h.VerifyEmail)
	api.GET("/auth/login/verify", h.VerifyLogin)

	return &authFixture{engine: engine, repo: repo, svc: svc}
}

func (f *authFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	f.engine.ServeHTTP(res, req)

	var env envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	return res, env
}

func TestRegisterEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	res, env := f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "verification email sent", env.Message)
	assert.Equal(t, false, env.Meta["email_dispatched"])

	res, env = f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "already registered, please log in", env.Message)
}

func TestRegisterEndpointRejectsBadPayload(t *testing.T) {
	f := newAuthFixture(t)

	res, _ := f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res, _ = f.do(t, http.MethodPost, "/api/auth/register", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLoginEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	res, _ := f.do(t, http.MethodPost, "/api/auth/login", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)

	f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)

	res, env := f.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "email not verified", env.Message)

	_, err := f.repo.MarkVerified(context.Background(), "ada@example.com")
	require.NoError(t, err)

	res, env = f.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "login link sent", env.Message)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	f := newAuthFixture(t)
	f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)

	res, env := f.do(t, http.MethodGet, "/api/auth/verify-email", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "missing token", env.Message)

	res, env = f.do(t, http.MethodGet, "/api/auth/verify-email?token=garbage", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "token invalid", env.Message)

	loginTok, err := f.svc.Links.Issue("ada@example.com", tokens.PurposeLogin)
	require.NoError(t, err)
	res, env = f.do(t, http.MethodGet, "/api/auth/verify-email?token="+loginTok, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "token purpose mismatch", env.Message)

	verifyTok, err := f.svc.Links.Issue("ada@example.com", tokens.PurposeVerify)
	require.NoError(t, err)
	res, env = f.do(t, http.MethodGet, "/api/auth/verify-email?token="+verifyTok, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "email verified successfully, please log in", env.Message)

	res, env = f.do(t, http.MethodGet, "/api/auth/verify-email?token="+verifyTok, "")
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "email already verified, please log in", env.Message)

	ghostTok, err := f.svc.Links.Issue("ghost@example.com", tokens.PurposeVerify)
	require.NoError(t, err)
	res, env = f.do(t, http.MethodGet, "/api/auth/verify-email?token="+ghostTok, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "user not found", env.Message)
}

func TestVerifyEmailEndpointExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)

	expired := tokens.NewLinkCodec(tokens.Secrets{Link: "link-secret"}, -time.Minute)
	tok, err := expired.Issue("ada@example.com", tokens.PurposeVerify)
	require.NoError(t, err)

	res, env := f.do(t, http.MethodGet, "/api/auth/verify-email?token="+tok, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "token expired", env.Message)
}

func TestVerifyLoginEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	verifyTok, err := f.svc.Links.Issue("ada@example.com", tokens.PurposeVerify)
	require.NoError(t, err)
	res, env := f.do(t, http.MethodGet, "/api/auth/login/verify?token="+verifyTok, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "token purpose mismatch", env.Message)

	loginTok, err := f.svc.Links.Issue("ada@example.com", tokens.PurposeLogin)
	require.NoError(t, err)
	res, env = f.do(t, http.MethodGet, "/api/auth/login/verify?token="+loginTok, "")
	assert.Equal(t, http.StatusOK, res.Code)

	var data struct {
		SessionToken string `json:"session_token"`
		Email        string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ada@example.com", data.Email)

	subject, err := f.svc.Sessions.Validate(data.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", subject)
}

func TestResendVerificationEndpoint(t *testing.T) {
	f := newAuthFixture(t)

	res, _ := f.do(t, http.MethodPost, "/api/auth/verify/resend", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)

	f.do(t, http.MethodPost, "/api/auth/register", `{"name":"Ada","email":"ada@example.com"}`)

	res, env := f.do(t, http.MethodPost, "/api/auth/verify/resend", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "verification email sent", env.Message)

	_, err := f.repo.MarkVerified(context.Background(), "ada@example.com")
	require.NoError(t, err)

	res, env = f.do(t, http.MethodPost, "/api/auth/verify/resend", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "email already verified, please log in", env.Message)
}
