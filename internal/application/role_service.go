package application

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/learnflow/learnflow-auth/internal/domain/entity"
	"github.com/learnflow/learnflow-auth/internal/metrics"
	"github.com/learnflow/learnflow-auth/pkg/mailer"
	mailtpl "github.com/learnflow/learnflow-auth/pkg/mailer/templates"
)

// RoleService performs the one-way student to teacher elevation.
type RoleService struct {
	Credentials *CredentialService
	Queue       EmailQueue
	Links       mailtpl.Links
	Logger      logrus.FieldLogger

	teacherCode string
	now         func() time.Time
}

func NewRoleService(creds *CredentialService, teacherCode string, queue EmailQueue, links mailtpl.Links, logger logrus.FieldLogger) *RoleService {
	return &RoleService{
		Credentials: creds,
		Queue:       queue,
		Links:       links,
		Logger:      logger,
		teacherCode: teacherCode,
		now:         time.Now,
	}
}

// ElevateToTeacher promotes the session's user when code equals the
// configured teacher code. An empty configured code rejects every attempt.
func (s *RoleService) ElevateToTeacher(ctx context.Context, session *entity.SessionUser, code string) (entity.Role, error) {
	if session == nil {
		metrics.RecordElevation(metrics.OutcomeUnauthorized)
		return "", ErrUnauthorized
	}
	if !s.codeMatches(code) {
		metrics.RecordElevation(metrics.OutcomeInvalidCode)
		if s.Logger != nil {
			s.Logger.WithField("user_id", session.ID).Warn("teacher code rejected")
		}
		return "", ErrInvalidCode
	}

	if err := s.Credentials.SetRole(ctx, session.ID, entity.RoleTeacher); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// signed token for a user the store no longer knows
			metrics.RecordElevation(metrics.OutcomeUnauthorized)
			return "", ErrUnauthorized
		}
		metrics.RecordElevation(metrics.OutcomeError)
		return "", err
	}
	metrics.RecordElevation(metrics.OutcomeSuccess)

	publishEmail(ctx, s.Queue, s.Logger, mailer.EmailJob{
		To:       session.Email,
		Template: mailtpl.RoleElevated,
		Data: mailtpl.NewRoleElevatedData(s.Links, session.Name, session.Email, entity.RoleTeacher.String(),
			mailtpl.WithTime(s.now())),
	})
	return entity.RoleTeacher, nil
}

// codeMatches compares digests so neither content nor length of the
// configured code leaks through timing.
func (s *RoleService) codeMatches(code string) bool {
	if s.teacherCode == "" {
		return false
	}
	want := sha256.Sum256([]byte(s.teacherCode))
	got := sha256.Sum256([]byte(code))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}
