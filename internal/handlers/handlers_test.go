package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wooglin/roster-api/internal/constants"
	"github.com/wooglin/roster-api/internal/metrics"
	"github.com/wooglin/roster-api/internal/models"
	"github.com/wooglin/roster-api/internal/repository"
	"github.com/wooglin/roster-api/internal/services"
	"github.com/wooglin/roster-api/internal/testhelpers"
	"github.com/wooglin/roster-api/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testAPIKey = "test-api-key"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	loc    *time.Location
	shifts *services.ShiftService
}

func newRoutes(db *gorm.DB, loc *time.Location) (Routes, *services.ShiftService) {
	userRepo := repository.NewUserRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	m := metrics.New()

	authService := services.NewAuthService(userRepo, memberRepo)
	memberService := services.NewMemberService(memberRepo, userRepo, validation.EmailValidator{})
	memberService.HashCost = bcrypt.MinCost
	shiftService := services.NewShiftService(
		repository.NewShiftRepository(db),
		repository.NewAssignmentRepository(db),
		memberRepo, loc, m,
	)
	eventService := services.NewEventService(repository.NewEventRepository(db))

	return Routes{
		AuthService: authService,
		APIKeys:     []string{testAPIKey},
		Metrics:     m,
		Auth:        NewAuthHandler(authService),
		Members:     NewMemberHandler(memberService),
		Shifts:      NewShiftHandler(shiftService, zap.NewNop()),
		Events:      NewEventHandler(eventService, loc),
		Health:      NewHealthHandler(db),
	}, shiftService
}

func newEngine(rt Routes) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(rt.Metrics.Middleware())
	RegisterRoutes(r, rt)
	return r
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testhelpers.SetupTestDB(t)
	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	rt, shifts := newRoutes(db, loc)
	return &testEnv{db: db, router: newEngine(rt), loc: loc, shifts: shifts}
}

// login authenticates as the member's user and returns the session cookies.
func (e *testEnv) login(t *testing.T, m *models.Member) []*http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": m.User.Username,
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
	return cookies
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(t, e.router, method, path, body, cookies, headers...)
}

func serve(t *testing.T, r http.Handler, method, path string, body any, cookies []*http.Cookie, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
