package authz

import "taskhub/internal/models"

func IsAdmin(role models.Role) bool {
	return role == models.RoleAdmin
}

// CanManageUser reports whether actor may read or edit the profile of target.
func CanManageUser(actorID int64, actorRole models.Role, targetID int64) bool {
	return actorID == targetID || IsAdmin(actorRole)
}
