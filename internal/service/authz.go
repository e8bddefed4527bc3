package service

import "kollektivet/internal/models"

// CanModify reports whether the caller may edit or delete a quote owned by
// ownerID: owners may touch their own quotes, admins may touch any.
func CanModify(callerID, role, ownerID string) bool {
	return callerID == ownerID || role == models.RoleAdmin
}
