package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateLocationInput is the input for registering a storage location.
type CreateLocationInput struct {
	Name    string
	Type    string
	Region  string
	Address string
}

// CreateItemInput is the input for registering a tracked item.
type CreateItemInput struct {
	Name         string
	Category     string
	Unit         string
	LeadTimeDays int
	MinStock     int64
}

// CatalogService manages the reference data the ledger writes against.
type CatalogService interface {
	ListLocations(ctx context.Context) ([]Location, error)
	CreateLocation(ctx context.Context, in CreateLocationInput) (*Location, error)
	GetLocation(ctx context.Context, id int64) (*Location, error)
	ListItems(ctx context.Context) ([]Item, error)
	CreateItem(ctx context.Context, in CreateItemInput) (*Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
}

type catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog constructs a CatalogService backed by the given pool.
func NewCatalog(pool *pgxpool.Pool) CatalogService {
	return &catalog{pool: pool}
}

func (c *catalog) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, name, type, region, address, created_at
		FROM locations
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	out := []Location{}
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Type, &l.Region, &l.Address, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (c *catalog) CreateLocation(ctx context.Context, in CreateLocationInput) (*Location, error) {
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "location name is required"}
	}
	if in.Type == "" {
		return nil, &ValidationError{Field: "type", Reason: "location type is required"}
	}

	l := Location{Name: in.Name, Type: in.Type, Region: in.Region, Address: in.Address}
	err := c.pool.QueryRow(ctx, `
		INSERT INTO locations (name, type, region, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, l.Name, l.Type, l.Region, l.Address).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("location %q already exists", in.Name)}
		}
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}
	return &l, nil
}

func (c *catalog) GetLocation(ctx context.Context, id int64) (*Location, error) {
	var l Location
	err := c.pool.QueryRow(ctx, `
		SELECT id, name, type, region, address, created_at
		FROM locations WHERE id = $1
	`, id).Scan(&l.ID, &l.Name, &l.Type, &l.Region, &l.Address, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "location", Ref: fmt.Sprintf("%d", id)}
		}
		return nil, fmt.Errorf("failed to fetch location: %w", err)
	}
	return &l, nil
}

func (c *catalog) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, name, category, unit, lead_time_days, min_stock, created_at
		FROM items
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var i Item
		if err := rows.Scan(&i.ID, &i.Name, &i.Category, &i.Unit, &i.LeadTimeDays, &i.MinStock, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (c *catalog) CreateItem(ctx context.Context, in CreateItemInput) (*Item, error) {
	if in.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "item name is required"}
	}
	if in.LeadTimeDays < 1 {
		return nil, &ValidationError{Field: "lead_time_days", Reason: "must be at least 1"}
	}
	if in.MinStock < 0 {
		return nil, &ValidationError{Field: "min_stock", Reason: "must not be negative"}
	}

	i := Item{Name: in.Name, Category: in.Category, Unit: in.Unit, LeadTimeDays: in.LeadTimeDays, MinStock: in.MinStock}
	err := c.pool.QueryRow(ctx, `
		INSERT INTO items (name, category, unit, lead_time_days, min_stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, i.Name, i.Category, i.Unit, i.LeadTimeDays, i.MinStock).Scan(&i.ID, &i.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ValidationError{Field: "name", Reason: fmt.Sprintf("item %q already exists", in.Name)}
		}
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}
	return &i, nil
}

func (c *catalog) GetItem(ctx context.Context, id int64) (*Item, error) {
	var i Item
	err := c.pool.QueryRow(ctx, `
		SELECT id, name, category, unit, lead_time_days, min_stock, created_at
		FROM items WHERE id = $1
	`, id).Scan(&i.ID, &i.Name, &i.Category, &i.Unit, &i.LeadTimeDays, &i.MinStock, &i.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "item", Ref: fmt.Sprintf("%d", id)}
		}
		return nil, fmt.Errorf("failed to fetch item: %w", err)
	}
	return &i, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
