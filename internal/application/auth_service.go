package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkwell-labs/inkwell/config"
	"github.com/inkwell-labs/inkwell/internal/domain/entity"
	"github.com/inkwell-labs/inkwell/internal/domain/repository"
	"github.com/inkwell-labs/inkwell/pkg/mailer"
	tpl "github.com/inkwell-labs/inkwell/pkg/mailer/templates"
	"github.com/inkwell-labs/inkwell/pkg/tokens"
)

var (
	ErrAlreadyRegistered = errors.New("already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailNotVerified  = errors.New("email not verified")
)

// EmailEnqueuer hands a mail job to the dispatch queue. RabbitPublisher
// satisfies it; tests substitute a stub.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService orchestrates the passwordless flows: it composes the link
// and session codecs with the user directory and drives the
// Unregistered -> Registered-Unverified -> Registered-Verified
// transitions. Token validation always precedes any directory mutation,
// so a bad token never causes a partial state change.
type AuthService struct {
	Repo     repository.UserRepository
	Links    *tokens.LinkCodec
	Sessions *tokens.SessionCodec
	Enqueue  EmailEnqueuer
	Logger   *logrus.Logger
	Cfg      *config.Config
}

func NewAuthService(repo repository.UserRepository, links *tokens.LinkCodec, sessions *tokens.SessionCodec, enqueue EmailEnqueuer, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{Repo: repo, Links: links, Sessions: sessions, Enqueue: enqueue, Logger: logger, Cfg: cfg}
}

// Session is the credential returned by a completed login.
type Session struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

// Register creates an unverified user and emails a verification link.
// The returned flag reports whether the email was handed to the queue;
// the user row is committed either way and the caller can recover a
// failed dispatch via ResendVerification.
func (s *AuthService) Register(ctx context.Context, name, email string) (dispatched bool, err error) {
	u := &entity.User{Email: email, Name: name, IsVerified: false}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return false, ErrAlreadyRegistered
		}
		return false, err
	}

	return s.sendLink(ctx, u, tokens.PurposeVerify), nil
}

// RequestLogin emails a login link to a verified user.
func (s *AuthService) RequestLogin(ctx context.Context, email string) (dispatched bool, err error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if !u.IsVerified {
		return false, ErrEmailNotVerified
	}

	return s.sendLink(ctx, u, tokens.PurposeLogin), nil
}

// VerifyEmail consumes a verify-scoped link token and flips the user's
// verification flag. Codec errors propagate verbatim. The returned flag
// reports whether the user had already been verified before this call.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (alreadyVerified bool, err error) {
	subject, err := s.Links.Validate(token, tokens.PurposeVerify)
	if err != nil {
		return false, err
	}

	u, err := s.Repo.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if u.IsVerified {
		return true, nil
	}

	if _, err := s.Repo.MarkVerified(ctx, subject); err != nil {
		return false, err
	}
	s.Logger.WithField("email", subject).Info("email verified")
	return false, nil
}

// VerifyLogin consumes a login-scoped link token and mints a session
// token for its subject. Validity is purely cryptographic: the token
// proves a login link issued to that address within the last window.
func (s *AuthService) VerifyLogin(ctx context.Context, token string) (Session, error) {
	subject, err := s.Links.Validate(token, tokens.PurposeLogin)
	if err != nil {
		return Session{}, err
	}

	st, exp, err := s.Sessions.Issue(subject)
	if err != nil {
		return Session{}, err
	}
	s.Logger.WithField("email", subject).Info("session issued")
	return Session{Token: st, Email: subject, ExpiresAt: exp}, nil
}

// ResendVerification issues a fresh verification link for a registered,
// still-unverified address. The recovery path when the original email
// never arrived.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (alreadyVerified, dispatched bool, err error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, false, ErrUserNotFound
		}
		return false, false, err
	}
	if u.IsVerified {
		return true, false, nil
	}

	return false, s.sendLink(ctx, u, tokens.PurposeVerify), nil
}

// sendLink issues a purpose-scoped link token and enqueues the email.
// Dispatch is best-effort: failures are logged and reported to the
// caller but never roll back directory state.
func (s *AuthService) sendLink(ctx context.Context, u *entity.User, purpose tokens.Purpose) bool {
	token, err := s.Links.Issue(u.Email, purpose)
	if err != nil {
		s.Logger.WithError(err).WithField("email", u.Email).Error("issue link token failed")
		return false
	}

	var link, action string
	if purpose == tokens.PurposeVerify {
		link = s.Cfg.VerifyEmailLink(token)
		action = "verify"
	} else {
		link = s.Cfg.LoginLink(token)
		action = "login"
	}

	if s.Enqueue == nil || !s.Cfg.MailSendEnabled {
		s.Logger.WithFields(logrus.Fields{"email": u.Email, "action": action}).Debug("mail dispatch disabled")
		return false
	}

	data := tpl.NewMagicLinkData(s.Cfg.AppName, u.Name, u.Email, link, action, s.Links.TTL())
	job := mailer.EmailJob{To: u.Email, Template: tpl.MagicLink, Data: tpl.ToMap(data)}
	if err := s.Enqueue.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"email": u.Email, "action": action}).Warn("enqueue email failed")
		return false
	}
	return true
}
