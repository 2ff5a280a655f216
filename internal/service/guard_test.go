package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippy/internal/apperror"
)

type ownerMap map[string]string

func (m ownerMap) GetOwner(_ context.Context, id string) (string, error) {
	owner, ok := m[id]
	if !ok {
		return "", apperror.NotFound("snippet", id)
	}
	return owner, nil
}

func TestAssertOwnership(t *testing.T) {
	g := NewOwnershipGuard(ownerMap{"s1": "alice"})

	tests := []struct {
		name    string
		id      string
		caller  string
		wantErr error
	}{
		{"owner", "s1", "alice", nil},
		{"someone else", "s1", "bob", apperror.ErrForbidden},
		{"missing snippet", "s2", "alice", apperror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AssertOwnership(context.Background(), tt.id, tt.caller)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("AssertOwnership() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AssertOwnership() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
