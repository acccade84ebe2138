package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/memory"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/repository"
	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	"github.com/oksasatya/bookstore-backend/pkg/mailer"
	"github.com/oksasatya/bookstore-backend/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type envelope struct {
	Status    int               `json:"status"`
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	RequestID string            `json:"request_id"`
	Data      json.RawMessage   `json:"data"`
	Meta      json.RawMessage   `json:"meta"`
	Error     map[string]string `json:"error"`
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memStorage) Upload(_ context.Context, bucket, objectPath string, r io.Reader, _ string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+objectPath] = b
	return objectPath, nil
}

func (m *memStorage) PublicURL(_ context.Context, bucket, objectPath string) string {
	return "https://cdn.test/" + bucket + "/" + objectPath
}

func (m *memStorage) PresignedURL(context.Context, string, string, time.Duration) (string, error) {
	return "", errors.New("not used")
}

type testServer struct {
	engine  *gin.Engine
	jwt     *helpers.JWTManager
	users   *application.UserService
	storage *memStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	repos := repository.NewMemorySet(memory.NewStore())
	cfg := &config.Config{CompanyName: "BookS", VerifyEmailURL: "http://localhost:8080/api/auth/verify-email"}
	jwt := helpers.NewJWTManager(helpers.TokenConfig{
		AccessSecret: "access-secret",
		EmailSecret:  "email-secret",
		Issuer:       "BookS-API",
		Audience:     "BookS-Client",
		AccessTTL:    time.Hour,
	})
	st := &memStorage{objects: map[string][]byte{}}

	users := application.NewUserService(repos.Users, helpers.NewPasswordHasher(bcrypt.MinCost), logger)
	auth := application.NewAuthService(users, jwt, mailer.NewLogMailer(logger), cfg, logger)
	books := application.NewBookService(repos.Books, st, nil, application.BookServiceConfig{CoverBucket: "book_cover"}, logger)
	favorites := application.NewFavoriteService(repos.Books, repos.Favorites, logger)

	ah := NewAuthHandler(auth, logger, "localhost", false)
	bh := NewBookHandler(books, favorites, logger)
	ch := NewCategoryHandler(application.NewCategoryService(repos.Categories, logger), logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	api := r.Group("/api")
	api.POST("/user/register", ah.Register)
	api.POST("/auth/login", ah.Login)
	api.GET("/auth/verify-email", ah.VerifyEmail)
	api.GET("/books", bh.List)
	api.GET("/books/:id", bh.Get)
	api.GET("/categories", ch.List)

	auth2 := api.Group("/", middleware.Auth(jwt, logger))
	auth2.GET("/profile", ah.Profile)
	auth2.POST("/books", bh.Create)
	auth2.POST("/books/with-cover", bh.CreateWithCover)
	auth2.POST("/books/:id/favorite", bh.AddFavorite)
	auth2.DELETE("/books/:id/favorite", bh.RemoveFavorite)
	auth2.GET("/favorites", bh.ListFavorites)
	auth2.POST("/categories", ch.Create)

	return &testServer{engine: r, jwt: jwt, users: users, storage: st}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// signIn creates a user directly and returns an access token for it
func (s *testServer) signIn(t *testing.T, email string) string {
	t.Helper()
	u, err := s.users.Register(context.Background(), application.RegisterInput{Username: "reader", Email: email, Password: "Secret1!"})
	require.NoError(t, err)
	token, _, err := s.jwt.IssueAccessToken(u.ID, u.Email)
	require.NoError(t, err)
	return token
}

func bookPayload() map[string]any {
	return map[string]any{
		"title":       "Dune",
		"authorId":    docstore.NewID(),
		"publisherId": docstore.NewID(),
		"price":       9.99,
		"stock":       3,
		"categoryIds": []string{docstore.NewID()},
	}
}

func TestRegisterThenDuplicate(t *testing.T) {
	s := newTestServer(t)
	body := map[string]string{"username": "alice", "email": "a@b.com", "password": "Secret1!"}

	w, env := s.do(t, http.MethodPost, "/api/user/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
	assert.NotContains(t, w.Body.String(), "$2a$")

	var u UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "a@b.com", u.Email)
	assert.False(t, u.IsEmailVerified)

	w, env = s.do(t, http.MethodPost, "/api/user/register", body, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user with this email already exists", env.Message)
	assert.False(t, env.Success)
}

func TestRegisterValidationDetails(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodPost, "/api/user/register", map[string]string{"username": "al", "password": "123"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid payload", env.Message)
	assert.Equal(t, "is required", env.Error["email"])
	assert.Contains(t, env.Error, "username")
	assert.Contains(t, env.Error, "password")

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w, env = s.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, env.Error)
}

func TestLoginSetsCookieAndProfile(t *testing.T) {
	s := newTestServer(t)
	s.signIn(t, "a@b.com")

	w, env := s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "Secret1!"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res loginResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "a@b.com", res.User.Email)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == helpers.AccessTokenCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, res.AccessToken, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: cookie.Value})
	w, env = s.serve(t, req)
	require.Equal(t, http.StatusOK, w.Code)
	var u UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "a@b.com", u.Email)

	w, env = s.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)
	w, _ := s.do(t, http.MethodGet, "/api/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/profile", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyEmail(t *testing.T) {
	s := newTestServer(t)
	s.signIn(t, "a@b.com")

	token, _, err := s.jwt.IssueEmailVerificationToken("a@b.com")
	require.NoError(t, err)
	w, env := s.do(t, http.MethodGet, "/api/auth/verify-email?token="+token, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var u UserResponse
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.True(t, u.IsEmailVerified)

	w, _ = s.do(t, http.MethodGet, "/api/auth/verify-email?token=nope", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/auth/verify-email", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmptyListsAreArrays(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, http.MethodGet, "/api/books", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.JSONEq(t, `{"count":0}`, string(env.Meta))
}

func TestUnknownBookIsNotFound(t *testing.T) {
	s := newTestServer(t)
	for _, id := range []string{docstore.NewID(), "not-an-id"} {
		w, env := s.do(t, http.MethodGet, "/api/books/"+id, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.False(t, env.Success)
	}
}

func TestBookFavoriteFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn(t, "a@b.com")

	w, _ := s.do(t, http.MethodPost, "/api/books", bookPayload(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := s.do(t, http.MethodPost, "/api/books", bookPayload(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book struct {
		ID    string `json:"id"`
		Stats struct {
			Favorites int64 `json:"favorites"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &book))
	require.NotEmpty(t, book.ID)

	fav := "/api/books/" + book.ID + "/favorite"
	w, _ = s.do(t, http.MethodPost, fav, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = s.do(t, http.MethodPost, fav, nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "book already in favorites", env.Message)

	_, env = s.do(t, http.MethodGet, "/api/books/"+book.ID, nil, "")
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Equal(t, int64(1), book.Stats.Favorites)

	_, env = s.do(t, http.MethodGet, "/api/favorites", nil, token)
	assert.JSONEq(t, `{"count":1}`, string(env.Meta))

	w, _ = s.do(t, http.MethodDelete, fav, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = s.do(t, http.MethodDelete, fav, nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "book not in favorites", env.Message)

	_, env = s.do(t, http.MethodGet, "/api/books/"+book.ID, nil, "")
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Equal(t, int64(0), book.Stats.Favorites)

	w, _ = s.do(t, http.MethodPost, "/api/books/"+docstore.NewID()+"/favorite", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn(t, "a@b.com")

	p := bookPayload()
	p["authorId"] = "123"
	p["price"] = -1
	p["categoryIds"] = []string{}
	w, env := s.do(t, http.MethodPost, "/api/books", p, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a valid object id", env.Error["authorId"])
	assert.Contains(t, env.Error, "price")
	assert.Contains(t, env.Error, "categoryIds")
}

func coverRequest(t *testing.T, meta any, filename string, content []byte, token string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if meta != nil {
		b, err := json.Marshal(meta)
		require.NoError(t, err)
		require.NoError(t, mw.WriteField(metaDataField, string(b)))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(coverFileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books/with-cover", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateWithCover(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn(t, "a@b.com")

	w, env := s.serve(t, coverRequest(t, bookPayload(), "Cover.PNG", []byte("png-bytes"), token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var book struct {
		ID            string `json:"id"`
		CoverImageURL string `json:"coverImageUrl"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &book))
	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.test/book_cover/`+book.ID+`/[0-9a-f-]{36}\.png$`), book.CoverImageURL)
	assert.Len(t, s.storage.objects, 1)

	bad := bookPayload()
	delete(bad, "title")
	w, env = s.serve(t, coverRequest(t, bad, "c.png", []byte("x"), token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "is required", env.Error["title"])

	w, env = s.serve(t, coverRequest(t, bookPayload(), "", nil, token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "cover image file is required", env.Message)
}

func TestCategoryCreateAndLookup(t *testing.T) {
	s := newTestServer(t)
	token := s.signIn(t, "a@b.com")

	w, env := s.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Fiction", "description": "short"}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "description")

	body := map[string]string{"name": "Fiction", "description": "Invented stories and novels"}
	w, _ = s.do(t, http.MethodPost, "/api/categories", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w, env = s.do(t, http.MethodPost, "/api/categories", body, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "category with this name already exists", env.Message)

	w, env = s.do(t, http.MethodGet, "/api/categories?name=Fiction", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, string(env.Meta))

	w, _ = s.do(t, http.MethodGet, "/api/categories?name=Poetry", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/books", nil)
	c.Set("request_id", "rid-1")

	respondError(c, logger, errors.New("dial tcp 10.0.0.5:27017: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), internalMessage)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	assert.Contains(t, logs.String(), "10.0.0.5")
	assert.Contains(t, logs.String(), "rid-1")
}
