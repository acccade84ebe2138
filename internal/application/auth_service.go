package application

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	mailtpl "github.com/oksasatya/bookstore-backend/pkg/mailer/templates"
)

var ErrInvalidCredentials = apperror.NewUnauthorized("invalid credentials", nil)

type AuthService struct {
	Users  *UserService
	JWT    *helpers.JWTManager
	Mailer Mailer
	Cfg    *config.Config
	Logger logrus.FieldLogger
}

func NewAuthService(users *UserService, jwt *helpers.JWTManager, mailer Mailer, cfg *config.Config, logger logrus.FieldLogger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Mailer: mailer, Cfg: cfg, Logger: logger}
}

type LoginResult struct {
	User        *entity.User
	AccessToken string
	ExpiresAt   time.Time
}

// Login verifies the password and issues an access token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.Users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.Users.Hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.JWT.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, apperror.NewInternal("issue access token", err)
	}
	return &LoginResult{User: u, AccessToken: token, ExpiresAt: exp}, nil
}

// Register creates the account and sends the confirmation email best-effort
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	u, err := s.Users.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.sendConfirmation(ctx, u); err != nil {
		helpers.LogError(s.Logger, "send confirmation email failed", err, logrus.Fields{"user_id": u.ID})
	}
	return u, nil
}

// SendConfirmation mails a fresh verification link to the user
func (s *AuthService) SendConfirmation(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsEmailVerified {
		return apperror.NewConflict("email already verified", nil)
	}
	return s.sendConfirmation(ctx, u)
}

func (s *AuthService) sendConfirmation(ctx context.Context, u *entity.User) error {
	token, exp, err := s.JWT.IssueEmailVerificationToken(u.Email)
	if err != nil {
		return apperror.NewInternal("issue email token", err)
	}
	link, err := VerifyLink(s.Cfg.VerifyEmailURL, token)
	if err != nil {
		return apperror.NewInternal("build verify link", err)
	}
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	data := mailtpl.NewConfirmEmailData(s.Cfg, name, u.Email, link, mailtpl.WithExpiresAt(exp))
	subject, _, html, err := mailtpl.Render(mailtpl.ConfirmEmail, data)
	if err != nil {
		return apperror.NewInternal("render confirmation email", err)
	}
	if err := s.Mailer.Send(ctx, u.Email, strings.TrimSpace(subject), html); err != nil {
		return apperror.NewInternal("send confirmation email", err)
	}
	return nil
}

// ConfirmEmail validates an email token and marks its owner verified
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (*entity.User, error) {
	claims, err := s.JWT.ValidateEmailToken(token)
	if err != nil {
		return nil, apperror.NewValidation("invalid or expired token", err)
	}
	return s.Users.MarkEmailVerified(ctx, claims.Email)
}

// VerifyLink appends token as a query parameter to base
func VerifyLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
