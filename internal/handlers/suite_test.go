package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskforge-api/internal/config"
	"github.com/yukikurage/taskforge-api/internal/database"
	apierrors "github.com/yukikurage/taskforge-api/internal/errors"
	"github.com/yukikurage/taskforge-api/internal/models"
	"github.com/yukikurage/taskforge-api/internal/permission"
	"github.com/yukikurage/taskforge-api/internal/repository"
	"github.com/yukikurage/taskforge-api/internal/services"
	"gorm.io/gorm"
)

const (
	adminEmail   = "admin@example.com"
	testPassword = "password123"
)

// HandlerTestSuite drives the full router over an in-memory SQLite
// database and cookie sessions
type HandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	store  *repository.Store
	router *gin.Engine
}

// envelope mirrors dto.Response with a typed payload
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// client is a signed-in user agent
type client struct {
	userID  uint64
	cookies []*http.Cookie
}

func (suite *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var err error
	suite.db, err = database.Connect(&config.Config{DBDriver: "sqlite", DBPath: ":memory:", GinMode: "release"})
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(suite.db))

	suite.store = repository.NewStore(suite.db, nil)
	svc := Services{
		Auth:       services.NewAuthService(suite.store.Users, adminEmail),
		Projects:   services.NewProjectService(suite.store),
		Tasks:      services.NewTaskService(suite.store, permission.NewPolicy(permission.ManagerScopeGlobal), nil),
		Membership: services.NewMembershipService(suite.store.Projects),
		Analytics:  services.NewAnalyticsService(suite.store),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.router = NewRouter(logger, suite.db, cookie.NewStore([]byte("secret")), svc)
}

func (suite *HandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *HandlerTestSuite) do(method, path string, body interface{}, s *client) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s != nil {
		for _, c := range s.cookies {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// register signs up a user through the API and returns its client
func (suite *HandlerTestSuite) register(name, email string) *client {
	w := suite.do(http.MethodPost, "/api/auth/register", gin.H{
		"name":     name,
		"email":    email,
		"password": testPassword,
	}, nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp envelope[struct {
		User struct {
			ID uint64 `json:"id"`
		} `json:"user"`
	}]
	suite.decode(w, &resp)
	suite.Require().NotEmpty(w.Result().Cookies())
	return &client{userID: resp.Data.User.ID, cookies: w.Result().Cookies()}
}

// promote sets a user's global role directly in the database
func (suite *HandlerTestSuite) promote(s *client, role models.Role) {
	user, err := suite.store.Users.FindByID(s.userID)
	suite.Require().NoError(err)
	user.Role = role
	suite.Require().NoError(suite.store.Users.Update(user))
}

func (suite *HandlerTestSuite) decode(w *httptest.ResponseRecorder, dst interface{}) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (suite *HandlerTestSuite) requireError(w *httptest.ResponseRecorder, status int, code string) apierrors.APIError {
	suite.Require().Equal(status, w.Code, w.Body.String())
	var body apierrors.APIError
	suite.decode(w, &body)
	suite.False(body.Success)
	suite.Equal(code, body.Code)
	return body
}

type idData struct {
	ID uint64 `json:"id"`
}

func (suite *HandlerTestSuite) createProject(owner *client, name string) uint64 {
	w := suite.do(http.MethodPost, "/api/projects", gin.H{"name": name}, owner)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp envelope[struct {
		Project idData `json:"project"`
	}]
	suite.decode(w, &resp)
	return resp.Data.Project.ID
}

func (suite *HandlerTestSuite) addMember(owner *client, projectID uint64, email string) {
	w := suite.do(http.MethodPost, projectPath(projectID, "/members"), gin.H{"email": email}, owner)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (suite *HandlerTestSuite) createTask(s *client, projectID uint64, body gin.H) uint64 {
	w := suite.do(http.MethodPost, projectPath(projectID, "/tasks"), body, s)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var resp envelope[struct {
		Task idData `json:"task"`
	}]
	suite.decode(w, &resp)
	return resp.Data.Task.ID
}

func projectPath(id uint64, suffix string) string {
	return "/api/projects/" + itoa(id) + suffix
}

func taskPath(id uint64, suffix string) string {
	return "/api/tasks/" + itoa(id) + suffix
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
