package service

import (
	"context"
	"fmt"

	"github.com/sakif/snippy/internal/apperror"
)

// OwnerReader reads the owner column of a snippet. It is the only store
// capability the guard needs.
type OwnerReader interface {
	GetOwner(ctx context.Context, id string) (string, error)
}

// OwnershipGuard decides whether a caller may mutate a snippet.
//
// WHAT IT READS:
// Exactly one column (the owner) of one row. It has no side effects.
//
// CHECK, THEN WRITE:
// The decision is advisory. The mutation that follows is itself scoped to
// (id, owner), so a row that changes between the check and the write is
// reported as not found instead of being modified.
type OwnershipGuard struct {
	owners OwnerReader
}

func NewOwnershipGuard(owners OwnerReader) *OwnershipGuard {
	return &OwnershipGuard{owners: owners}
}

// AssertOwnership returns nil when callerID owns snippetID,
// apperror.ErrNotFound when the snippet does not exist and
// apperror.ErrForbidden when someone else owns it.
func (g *OwnershipGuard) AssertOwnership(ctx context.Context, snippetID, callerID string) error {
	owner, err := g.owners.GetOwner(ctx, snippetID)
	if err != nil {
		return fmt.Errorf("checking ownership: %w", err)
	}
	if owner != callerID {
		return apperror.Forbidden("you do not own this snippet")
	}
	return nil
}
