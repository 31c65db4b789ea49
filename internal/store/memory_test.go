package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/uploadimagens/apiserver/types"
)

func TestMemoryCreateAndLookup(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, types.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Role:         types.RoleUser,
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 1 {
		t.Fatalf("expected first id to be 1, got %d", created.ID)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set")
	}

	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID || byName.PasswordHash != "hash" {
		t.Fatalf("unexpected record: %+v", byName)
	}

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Username != "alice" {
		t.Fatalf("unexpected username: %q", byID.Username)
	}
}

func TestMemoryLookupIsCaseSensitive(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, types.User{Username: "Alice"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for different case, got %v", err)
	}
}

func TestMemoryNotFound(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryDuplicateUsername(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	if _, err := repo.Create(ctx, types.User{Username: "bob"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := repo.Create(ctx, types.User{Username: "bob"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if got := repo.Len(); got != 1 {
		t.Fatalf("expected store size 1 after duplicate, got %d", got)
	}
}

func TestMemorySequentialIDs(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		user, err := repo.Create(ctx, types.User{Username: fmt.Sprintf("user%d", i)})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if user.ID != i {
			t.Fatalf("expected id %d, got %d", i, user.ID)
		}
	}
}

func TestMemoryConcurrentCreateSameUsername(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, types.User{Username: "contested"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, duplicates int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrDuplicate):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly 1 successful create, got %d", successes)
	}
	if duplicates != attempts-1 {
		t.Fatalf("expected %d duplicates, got %d", attempts-1, duplicates)
	}
	if got := repo.Len(); got != 1 {
		t.Fatalf("expected store size 1, got %d", got)
	}
}
