package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"footix-auth-service/internal/adapter/db/postgres"
	"footix-auth-service/internal/adapter/gin/handler"
	"footix-auth-service/internal/adapter/ratelimit"
	"footix-auth-service/internal/credential"
	"footix-auth-service/internal/usecase/auth"
	pkgerrors "footix-auth-service/pkg/errors"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
}

func setupTestEnv(t *testing.T, opts handler.Options) *testEnv {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	// Untranslated driver errors, as in production, so details carry the driver message
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&postgres.AccountSchema{}))

	repo := postgres.NewAccountRepoPG(db, log)
	uc := auth.New(repo, credential.Plaintext{}, log)
	h := handler.NewAuthHandler(uc, repo, opts, log)

	router, err := SetupRouter(h, Options{CORSAllowedOrigins: []string{"*"}}, log)
	require.NoError(t, err)

	return &testEnv{
		router: router,
		db:     db,
	}
}

func (e *testEnv) register(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) rows(t *testing.T, email string) int64 {
	var n int64
	require.NoError(t, e.db.Model(&postgres.AccountSchema{}).Where("email = ?", email).Count(&n).Error)
	return n
}

func TestRegister_EndToEnd(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	w := env.register(`{"name":"Alice","email":"a@x.com","password":"p1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp handler.RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.User.ID)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.NotContains(t, w.Body.String(), "p1")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var stored postgres.AccountSchema
	require.NoError(t, env.db.First(&stored, resp.User.ID).Error)
	assert.Equal(t, "p1", stored.Password)
}

func TestRegister_DuplicateKeepsOneRow(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	require.Equal(t, http.StatusCreated, env.register(`{"name":"Alice","email":"a@x.com","password":"p1"}`).Code)

	w := env.register(`{"name":"Alice Bis","email":"a@x.com","password":"p2"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, handler.RegistrationFailedMessage, resp.Error)
	assert.Contains(t, resp.Details, "UNIQUE")

	assert.Equal(t, int64(1), env.rows(t, "a@x.com"))
}

func TestRegister_DuplicateAsConflict(t *testing.T) {
	env := setupTestEnv(t, handler.Options{ReportConflict: true})

	require.Equal(t, http.StatusCreated, env.register(`{"name":"Alice","email":"a@x.com","password":"p1"}`).Code)
	assert.Equal(t, http.StatusConflict, env.register(`{"name":"Alice","email":"a@x.com","password":"p1"}`).Code)
}

func TestRegister_EmptyFieldsRejected(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	w := env.register(`{"name":"","email":"","password":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
	assert.Equal(t, int64(0), env.rows(t, ""))
}

func TestRegister_ConcurrentDuplicates(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	const attempts = 2
	var (
		mu    sync.Mutex
		codes []int
		g     errgroup.Group
	)

	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			w := env.register(`{"name":"Alice","email":"race@x.com","password":"p1"}`)
			mu.Lock()
			codes = append(codes, w.Code)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.ElementsMatch(t, []int{http.StatusCreated, http.StatusInternalServerError}, codes)
	assert.Equal(t, int64(1), env.rows(t, "race@x.com"))
}

func TestLogin_NotImplemented(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(`{"email":"a@x.com","password":"p1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestStatusAndHealth(t *testing.T) {
	env := setupTestEnv(t, handler.Options{ServiceName: "footix-auth-service"})

	for _, path := range []string{"/", "/health"} {
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRateLimit_SpoofedForwardedFor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	limiter := ratelimit.New(client, ratelimit.Config{RequestsPerSecond: 0.001, BurstCapacity: 1, Enabled: true}, log)

	h := handler.NewAuthHandler(nopUsecase{}, nil, handler.Options{}, log)
	router, err := SetupRouter(h, Options{RateLimiter: limiter}, log)
	require.NoError(t, err)

	var codes []int
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{
		http.StatusNotImplemented,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
		http.StatusTooManyRequests,
	}, codes)
}

func TestSetupRouter_InvalidTrustedProxy(t *testing.T) {
	h := handler.NewAuthHandler(nopUsecase{}, nil, handler.Options{}, zaptest.NewLogger(t))

	_, err := SetupRouter(h, Options{TrustedProxies: []string{"not-an-ip"}}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

// nopUsecase answers every call with not implemented
type nopUsecase struct{}

func (nopUsecase) Register(context.Context, auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return nil, pkgerrors.NewNotImplementedError("register")
}

func (nopUsecase) Login(context.Context, auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, pkgerrors.NewNotImplementedError("login")
}

func TestPreflight(t *testing.T) {
	env := setupTestEnv(t, handler.Options{})

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/register", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
