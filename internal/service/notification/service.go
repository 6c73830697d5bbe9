package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/turnolab/scheduler-api/internal/config"
	"github.com/turnolab/scheduler-api/internal/model"
	"github.com/turnolab/scheduler-api/internal/repository"
)

// Service sends best-effort appointment emails. Failures are logged, never
// propagated: a booking must not fail because SMTP is down.
type Service interface {
	AppointmentCreated(ctx context.Context, apt *model.Appointment)
	AppointmentCancelled(ctx context.Context, apt *model.Appointment)
}

type emailService struct {
	dialer   *gomail.Dialer
	from     string
	patients repository.PatientRepository
	logger   zerolog.Logger
}

func NewService(cfg config.SMTPConfig, patients repository.PatientRepository, logger zerolog.Logger) Service {
	if !cfg.Enabled {
		return &noopService{}
	}
	return &emailService{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:     cfg.From,
		patients: patients,
		logger:   logger,
	}
}

func (s *emailService) AppointmentCreated(ctx context.Context, apt *model.Appointment) {
	s.send(ctx, apt, "Turno confirmado",
		fmt.Sprintf("Tu turno fue agendado para el %s.", apt.StartTime.Format("02/01/2006 15:04 MST")))
}

func (s *emailService) AppointmentCancelled(ctx context.Context, apt *model.Appointment) {
	s.send(ctx, apt, "Turno cancelado",
		fmt.Sprintf("Tu turno del %s fue cancelado.", apt.StartTime.Format("02/01/2006 15:04 MST")))
}

func (s *emailService) send(ctx context.Context, apt *model.Appointment, subject, body string) {
	patient, err := s.patients.Get(ctx, apt.PatientID)
	if err != nil {
		s.logger.Warn().Err(err).Str("patient_id", apt.PatientID.String()).Msg("notification skipped")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", patient.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Warn().Err(err).Str("to", patient.Email).Msg("failed to send notification email")
	}
}

type noopService struct{}

func (*noopService) AppointmentCreated(context.Context, *model.Appointment)   {}
func (*noopService) AppointmentCancelled(context.Context, *model.Appointment) {}
