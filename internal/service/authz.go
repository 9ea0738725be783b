// Package service contains the business logic layer.
package service

import (
	"context"

	"waveline/internal/models"
)

// AdminCheck reports whether a user holds superuser rights. Services receive
// it as a dependency so the user lookup stays out of each service.
type AdminCheck func(ctx context.Context, userID uint) (bool, error)

// requireOwner allows the action when the actor owns the resource or is a
// superuser. Callers must have resolved the resource first so a missing
// entity surfaces as NOT_FOUND before any ownership comparison.
func requireOwner(ctx context.Context, actorID, ownerID uint, isAdmin AdminCheck, denyMessage string) error {
	if actorID == ownerID {
		return nil
	}
	if isAdmin != nil {
		admin, err := isAdmin(ctx, actorID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewNotAllowedError(denyMessage)
}
