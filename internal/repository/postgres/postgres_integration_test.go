//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snippy/internal/apperror"
	"github.com/sakif/snippy/internal/model"
	"github.com/sakif/snippy/internal/testutil"
)

func newTestRepo(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	dsn := testutil.RequireEnv(t, "TEST_DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	repo, err := New(ctx, dsn)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return ctx, repo
}

func newOwner(t *testing.T, ctx context.Context, repo *Repository) string {
	t.Helper()
	u := &model.User{Email: xid.New().String() + "@example.com", PasswordHash: "x"}
	if err := repo.Users().Create(ctx, u); err != nil {
		t.Fatalf("creating owner: %v", err)
	}
	return u.ID
}

func TestIntegrationSnippetLifecycle(t *testing.T) {
	ctx, repo := newTestRepo(t)
	owner := newOwner(t, ctx, repo)
	other := newOwner(t, ctx, repo)

	s := &model.Snippet{Title: "Hello", Content: "print('hi')", Language: model.StringPtr("python"), UserID: owner}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetOwner(ctx, s.ID)
	if err != nil || got != owner {
		t.Fatalf("GetOwner() = %q, %v", got, err)
	}

	list, err := repo.ListByOwner(ctx, owner)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOwner() = %v, %v", list, err)
	}
	if !list[0].CreatedAt.Equal(list[0].UpdatedAt) {
		t.Errorf("fresh row: created_at %v != updated_at %v", list[0].CreatedAt, list[0].UpdatedAt)
	}
	if !list[0].CreatedAt.Equal(s.CreatedAt) || !list[0].UpdatedAt.Equal(s.UpdatedAt) {
		t.Errorf("stored timestamps %v/%v differ from returned %v/%v",
			list[0].CreatedAt, list[0].UpdatedAt, s.CreatedAt, s.UpdatedAt)
	}

	err = repo.UpdateOwned(ctx, &model.Snippet{ID: s.ID, UserID: other, Title: "x", Content: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateOwned(other owner) = %v, want ErrNotFound", err)
	}

	time.Sleep(5 * time.Millisecond)
	upd := &model.Snippet{ID: s.ID, UserID: owner, Title: "Hello2", Content: "print('hi')"}
	if err := repo.UpdateOwned(ctx, upd); err != nil {
		t.Fatalf("UpdateOwned() error = %v", err)
	}
	if upd.Title != "Hello2" || upd.Language != nil || !upd.UpdatedAt.After(upd.CreatedAt) {
		t.Errorf("UpdateOwned() = %+v", upd)
	}

	if err := repo.DeleteOwned(ctx, s.ID, owner); err != nil {
		t.Fatalf("DeleteOwned() error = %v", err)
	}
	if err := repo.DeleteOwned(ctx, s.ID, owner); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteOwned() = %v, want ErrNotFound", err)
	}
}

func TestIntegrationUsers(t *testing.T) {
	ctx, repo := newTestRepo(t)
	users := repo.Users()

	email := xid.New().String() + "@example.com"
	if err := users.Create(ctx, &model.User{Email: email, PasswordHash: "h"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := users.Create(ctx, &model.User{Email: email, PasswordHash: "h"}); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Create() = %v, want ErrConflict", err)
	}

	ghID := time.Now().UnixNano()
	first := &model.User{GitHubID: &ghID, Login: "octo"}
	if err := users.UpsertGitHub(ctx, first); err != nil {
		t.Fatalf("UpsertGitHub() error = %v", err)
	}
	second := &model.User{GitHubID: &ghID, Login: "octo2"}
	if err := users.UpsertGitHub(ctx, second); err != nil {
		t.Fatalf("UpsertGitHub() again error = %v", err)
	}
	if second.ID != first.ID || second.Login != "octo2" {
		t.Errorf("upsert did not keep id / refresh login: %+v vs %+v", first, second)
	}
}
