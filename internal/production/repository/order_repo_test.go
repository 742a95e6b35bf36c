package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/testutil"
)

func TestNextSequenceConcurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan int, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := repo.NextSequence(ctx, db, "SOF", 2026)
			if err != nil {
				errs <- err
				return
			}
			results <- n
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("NextSequence failed: %v", err)
	}

	seen := map[int]bool{}
	for n := range results {
		if seen[n] {
			t.Fatalf("duplicate sequence number %d", n)
		}
		seen[n] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct numbers, got %d", workers, len(seen))
	}
	for n := 1; n <= workers; n++ {
		if !seen[n] {
			t.Errorf("sequence must be gapless, missing %d", n)
		}
	}
}

func TestNextSequenceIsolatedByPrefixAndYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	n, err := repo.NextSequence(ctx, db, "SOF", 2026)
	if err != nil || n != 1 {
		t.Fatalf("expected 1, got %d (%v)", n, err)
	}
	n, _ = repo.NextSequence(ctx, db, "SOF", 2026)
	if n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	// другой год начинает счёт заново
	n, _ = repo.NextSequence(ctx, db, "SOF", 2027)
	if n != 1 {
		t.Errorf("new year must restart at 1, got %d", n)
	}

	// другой префикс — независимый счётчик
	n, _ = repo.NextSequence(ctx, db, "OPT", 2026)
	if n != 1 {
		t.Errorf("new prefix must restart at 1, got %d", n)
	}
}
