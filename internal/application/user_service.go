package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/roadwatch/warning-service/internal/domain/entity"
	repo "github.com/roadwatch/warning-service/internal/domain/repository"
	"github.com/roadwatch/warning-service/internal/observability"
	"github.com/roadwatch/warning-service/pkg/helpers"
	"github.com/roadwatch/warning-service/pkg/mailer"
)

var ErrUserExists = errors.New("username already taken")

// EmailPublisher is the queue side of the welcome-email flow. The RabbitMQ
// publisher satisfies it; tests use a fake.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// UserService is the credential vault: it registers users and verifies
// credentials. Plaintext passwords never survive past the hashing or
// comparison step.
type UserService struct {
	Repo    repo.UserRepository
	Emails  EmailPublisher
	Logger  *logrus.Logger
	Metrics *observability.Metrics
}

func NewUserService(r repo.UserRepository, emails EmailPublisher, logger *logrus.Logger, metrics *observability.Metrics) *UserService {
	return &UserService{Repo: r, Emails: emails, Logger: logger, Metrics: metrics}
}

// Authenticate reports whether username/password are a valid pair. An
// unknown username and a wrong password are indistinguishable to the caller,
// and the unknown-user path burns a bcrypt comparison so both cost the same.
func (s *UserService) Authenticate(ctx context.Context, username, password string) bool {
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil || u == nil {
		helpers.BurnPasswordCheck(password)
		return false
	}
	return helpers.CheckPassword(u.PasswordHash, password)
}

// Register creates a new user. Usernames are case-sensitive and globally
// unique; ErrUserExists is returned on conflict with no side effect. On
// success a welcome email job is queued best-effort.
func (s *UserService) Register(ctx context.Context, username, password, email string) error {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{Username: username, PasswordHash: hash, Email: email}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return ErrUserExists
		}
		return err
	}

	if s.Metrics != nil {
		s.Metrics.Registrations.Inc()
	}
	s.Logger.WithField("username", username).Info("user registered")

	if s.Emails != nil {
		job := mailer.EmailJob{
			To:      email,
			Subject: "Welcome to the road hazard warning service",
			Text:    "Hi " + username + ",\n\nYour account is ready. You can now report and query hazard warnings.\n",
		}
		if pErr := s.Emails.PublishJSON(ctx, job); pErr != nil {
			s.Logger.WithError(pErr).WithField("username", username).Warn("welcome email enqueue failed")
		}
	}
	return nil
}
