package services

import "wikihub/internal/models"

// Actor — автор действия, берётся из access-токена.
type Actor struct {
	UserID string
	Name   string
	Role   string
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == models.RoleAdmin }

// DisplayName — имя для createdBy и уведомлений.
func (a *Actor) DisplayName() string {
	if a == nil {
		return "system"
	}
	if a.Name != "" {
		return a.Name
	}
	return "Anonymous"
}

// canModify: админ может всё, остальные только своё. Записи без владельца правит только админ.
func (a *Actor) canModify(ownerID *string) bool {
	if a == nil {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == a.UserID
}
