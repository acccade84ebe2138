package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/memory"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/repository"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

type testEnv struct {
	repos     *repository.Set
	users     *UserService
	auth      *AuthService
	books     *BookService
	favorites *FavoriteService
	mailer    *captureMailer
	storage   *fakeStorage
	index     *fakeIndex
	jwt       *helpers.JWTManager
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := quietLogger()
	repos := repository.NewMemorySet(memory.NewStore())
	cfg := &config.Config{
		AppName:        "bookstore",
		CompanyName:    "BookS",
		VerifyEmailURL: "http://localhost:8080/api/auth/verify-email",
	}
	jwt := helpers.NewJWTManager(helpers.TokenConfig{
		AccessSecret: "access-secret",
		EmailSecret:  "email-secret",
		Issuer:       "BookS-API",
		Audience:     "BookS-Client",
		AccessTTL:    time.Hour,
	})
	m := &captureMailer{}
	st := &fakeStorage{uploads: map[string][]byte{}}
	idx := &fakeIndex{docs: map[string]entity.Book{}}

	users := NewUserService(repos.Users, helpers.NewPasswordHasher(bcrypt.MinCost), logger)
	return &testEnv{
		repos:     repos,
		users:     users,
		auth:      NewAuthService(users, jwt, m, cfg, logger),
		books:     NewBookService(repos.Books, st, idx, BookServiceConfig{CoverBucket: "book_cover", SignedURLTTL: time.Hour}, logger),
		favorites: NewFavoriteService(repos.Books, repos.Favorites, logger),
		mailer:    m,
		storage:   st,
		index:     idx,
		jwt:       jwt,
	}
}

type sentMail struct{ to, subject, html string }

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *captureMailer) Send(_ context.Context, to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

type fakeStorage struct {
	public     bool
	presignErr error
	uploads    map[string][]byte
}

func (f *fakeStorage) Upload(_ context.Context, bucket, objectPath string, r io.Reader, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	f.uploads[bucket+"/"+objectPath] = buf.Bytes()
	return objectPath, nil
}

func (f *fakeStorage) PublicURL(_ context.Context, bucket, objectPath string) string {
	if !f.public {
		return ""
	}
	return "https://public.example/" + bucket + "/" + objectPath
}

func (f *fakeStorage) PresignedURL(_ context.Context, bucket, objectPath string, _ time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://signed.example/" + bucket + "/" + objectPath + "?sig=1", nil
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]entity.Book
	results []string
	fail    bool
}

func (f *fakeIndex) Index(_ context.Context, b *entity.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[b.ID] = *b
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int) ([]string, error) {
	if f.fail {
		return nil, errors.New("es unavailable")
	}
	return f.results, nil
}
