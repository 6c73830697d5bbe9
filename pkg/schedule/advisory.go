package schedule

import (
	"context"
	"strings"
	"time"

	"github.com/turnolab/scheduler-api/pkg/gateway"
)

// Warning fragments, one per conflict kind. The UI shows them verbatim.
const (
	warningAppointment = "Turno existente"
	warningBlock       = "Bloqueo GCal"
	warningPrefix      = "Conflicto de horario: "
)

// advisoryTimeout bounds each collision check independently of the gateway
// client's own timeout.
const advisoryTimeout = 10 * time.Second

// CollisionCheck is the side-effect intent returned by SetField. It carries
// the sequence number that decides whether its response is still relevant
// when it lands.
type CollisionCheck struct {
	seq   uint64
	Query gateway.CollisionQuery
}

// RunCollisionCheck performs one advisory query. It is safe to call from a
// goroutine; responses are applied in issuance order, never completion order.
// Errors are swallowed: the advisory degrades silently and the prior warning
// state stays as it was.
func (s *Session) RunCollisionCheck(ctx context.Context, check *CollisionCheck) {
	if check == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, advisoryTimeout)
	defer cancel()

	result, err := s.gw.CheckCollisions(ctx, check.Query)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("professional_id", check.Query.ProfessionalID).
			Msg("collision check failed")
		return
	}

	s.applyAdvisory(check.seq, result)
}

// applyAdvisory installs a collision result unless it is stale. A response is
// stale when a newer check was issued after it, or when the session closed
// while it was in flight.
func (s *Session) applyAdvisory(seq uint64, result *gateway.CollisionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isOpen || seq != s.advisorySeq {
		s.logger.Debug().
			Uint64("seq", seq).
			Uint64("latest", s.advisorySeq).
			Msg("discarding stale collision result")
		return
	}

	s.warning = buildWarning(result)
}

func buildWarning(result *gateway.CollisionResult) string {
	var parts []string
	if len(result.ConflictingAppointments) > 0 {
		parts = append(parts, warningAppointment)
	}
	if len(result.ConflictingBlocks) > 0 {
		parts = append(parts, warningBlock)
	}
	if len(parts) == 0 {
		return ""
	}
	return warningPrefix + strings.Join(parts, " / ")
}
