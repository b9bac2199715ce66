package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/maatchaa/maatchaa-backend/internal/data/repos/testutil"
)

func TestProductRepoDiscoveryOrder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))

	company := uuid.New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p1 := testutil.SeedProduct(t, ctx, tx, company, "First", "", base)
	p2 := testutil.SeedProduct(t, ctx, tx, company, "Second", "", base.Add(time.Minute))
	p3 := testutil.SeedProduct(t, ctx, tx, uuid.New(), "Third", "", base.Add(2*time.Minute))

	if n, err := repo.Count(ctx, tx); err != nil || n != 3 {
		t.Fatalf("Count: err=%v n=%d", err, n)
	}

	page, err := repo.ListForDiscovery(ctx, tx, 0, 2)
	if err != nil || len(page) != 2 {
		t.Fatalf("ListForDiscovery: err=%v len=%d", err, len(page))
	}
	if page[0].ID != p1.ID || page[1].ID != p2.ID {
		t.Fatalf("order: got=%s,%s", page[0].Title, page[1].Title)
	}
	page, err = repo.ListForDiscovery(ctx, tx, 2, 2)
	if err != nil || len(page) != 1 || page[0].ID != p3.ID {
		t.Fatalf("second page: err=%v len=%d", err, len(page))
	}

	byCompany, err := repo.ListByCompany(ctx, tx, company, "", 0)
	if err != nil || len(byCompany) != 2 {
		t.Fatalf("ListByCompany: err=%v len=%d", err, len(byCompany))
	}
	byShop, err := repo.ListByCompany(ctx, tx, company, "other-shop.myshopify.com", 0)
	if err != nil || len(byShop) != 0 {
		t.Fatalf("ListByCompany shop filter: err=%v len=%d", err, len(byShop))
	}
}

func TestProductRepoKeywords(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewProductRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	bare := testutil.SeedProduct(t, ctx, tx, uuid.New(), "Bare", "", now)
	testutil.SeedProduct(t, ctx, tx, uuid.New(), "Keyed", "", now.Add(time.Second), "keyed review")

	missing, err := repo.ListMissingKeywords(ctx, tx)
	if err != nil || len(missing) != 1 || missing[0].ID != bare.ID {
		t.Fatalf("ListMissingKeywords: err=%v len=%d", err, len(missing))
	}

	if err := repo.UpdateSearchKeywords(ctx, tx, bare.ID, []string{"bare review", "best bare"}); err != nil {
		t.Fatalf("UpdateSearchKeywords: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, bare.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v", err)
	}
	if kws := got.Keywords(); len(kws) != 2 || kws[0] != "bare review" {
		t.Fatalf("keywords after update: got=%v", kws)
	}
	if missing, _ := repo.ListMissingKeywords(ctx, tx); len(missing) != 0 {
		t.Fatalf("expected no missing keywords, got=%d", len(missing))
	}

	if p, err := repo.GetByID(ctx, tx, uuid.New()); err != nil || p != nil {
		t.Fatalf("GetByID missing: err=%v p=%v", err, p)
	}
}
