package services

import (
	"github.com/yoockh/talentpool/internal/models"
	"github.com/yoockh/talentpool/internal/utils"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   models.Role
}

func (a Actor) Is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

func requireRole(op string, a Actor, roles ...models.Role) error {
	if a.UserID == "" {
		return utils.E(utils.CodeUnauthorized, op, "unauthorized", nil)
	}
	if !a.Is(roles...) {
		return utils.E(utils.CodeForbidden, op, "your role does not allow this action", nil)
	}
	return nil
}

// canManageJob: the recruiter who posted the job, or any admin.
func canManageJob(op string, a Actor, job *models.Job) error {
	if a.Role == models.RoleAdmin {
		return nil
	}
	if a.Role == models.RoleRecruiter && job.OwnedBy(a.UserID) {
		return nil
	}
	return utils.E(utils.CodeForbidden, op, "you do not have permission to manage this job", nil)
}

func ptr[T any](v T) *T { return &v }
