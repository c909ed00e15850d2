package consultation

import (
	"time"

	"telecare-server/internal/models"
)

// DefaultJoinWindow is how long before the scheduled time the patient's
// side of the channel opens.
const DefaultJoinWindow = 5 * time.Minute

// CanJoin reports whether the participant may currently enter the
// consultation's chat/video channel, using the default join window.
func CanJoin(now time.Time, c *models.Consultation, role models.Role) bool {
	ok, _ := JoinDecision(now, c, role, DefaultJoinWindow)
	return ok
}

// JoinDecision is the single authoritative access gate. Doctors may enter
// whenever the consultation is upcoming; patients from `window` before the
// scheduled time onward. The gate never re-closes once open: ending the
// encounter is the lifecycle's job, via completion or cancellation.
func JoinDecision(now time.Time, c *models.Consultation, role models.Role, window time.Duration) (bool, string) {
	if c == nil {
		return false, "consultation not found"
	}
	if c.Status != models.ConsultationUpcoming {
		return false, "consultation is not upcoming"
	}

	switch role {
	case models.RoleDoctor:
		return true, ""
	case models.RolePatient:
		if c.ScheduledAt.Sub(now) > window {
			return false, "consultation has not started yet"
		}
		return true, ""
	default:
		return false, "only participants may join a consultation"
	}
}
