package job

import (
	"github.com/notfakie/jellyseerr/logger"
	"github.com/notfakie/jellyseerr/web/service"
)

// ClearRecoveryLinksJob sweeps expired password recovery links so the
// guid/expiration pair on a user row is always either fully valid or absent.
type ClearRecoveryLinksJob struct {
	userService service.UserService
}

func NewClearRecoveryLinksJob() *ClearRecoveryLinksJob {
	return new(ClearRecoveryLinksJob)
}

func (j *ClearRecoveryLinksJob) Run() {
	if err := j.userService.ClearExpiredRecoveryLinks(); err != nil {
		logger.Warning("clear expired recovery links failed:", err)
	}
}
