package core_test

import (
	"context"
	"errors"
	"testing"

	"medstock-agent/internal/core"
)

func TestCatalog_DuplicateNames(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalog(pool)
	ctx := context.Background()

	_, err := catalog.CreateLocation(ctx, core.CreateLocationInput{
		Name: "Apollo Hospital - Mumbai", Type: "hospital", Region: "Maharashtra",
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("expected name ValidationError for duplicate location, got %v", err)
	}

	_, err = catalog.CreateItem(ctx, core.CreateItemInput{
		Name: "Paracetamol 500mg", Category: "painkiller", Unit: "tablets",
		LeadTimeDays: 3, MinStock: 100,
	})
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("expected name ValidationError for duplicate item, got %v", err)
	}
}

func TestCatalog_CreateAndGet(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	catalog := core.NewCatalog(pool)
	ctx := context.Background()

	loc, err := catalog.CreateLocation(ctx, core.CreateLocationInput{
		Name: "Sassoon Hospital - Pune", Type: "hospital", Region: "Maharashtra",
	})
	if err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	got, err := catalog.GetLocation(ctx, loc.ID)
	if err != nil {
		t.Fatalf("GetLocation failed: %v", err)
	}
	if got.Name != "Sassoon Hospital - Pune" || got.Type != "hospital" {
		t.Errorf("unexpected location: %+v", got)
	}

	item, err := catalog.CreateItem(ctx, core.CreateItemInput{
		Name: "ORS Sachets", Category: "first_aid", Unit: "packs",
		LeadTimeDays: 4, MinStock: 250,
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	if item.LeadTimeDays != 4 || item.MinStock != 250 {
		t.Errorf("unexpected item: %+v", item)
	}

	var nf *core.NotFoundError
	if _, err := catalog.GetItem(ctx, 9999); !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for missing item, got %v", err)
	}

	_, err = catalog.CreateItem(ctx, core.CreateItemInput{
		Name: "Bad Item", Category: "misc", Unit: "units", LeadTimeDays: 0, MinStock: 10,
	})
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Field != "lead_time_days" {
		t.Errorf("expected lead_time_days ValidationError, got %v", err)
	}
}
