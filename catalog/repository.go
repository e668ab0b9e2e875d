package catalog

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrCategoryInUse rejects deleting a category that still has products.
var ErrCategoryInUse = errors.New("category still has products", errors.CategoryConflict).
	WithCode(errors.CodeConflict).
	WithTextCode("CATEGORY_IN_USE")

// Products is the product repository
type Products interface {
	repository.Repository[*Product]

	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Product, error)
	ListByCategoryTx(ctx context.Context, tx bun.IDB, categoryID uuid.UUID) ([]*Product, error)
	Create(ctx context.Context, record *Product, criteria ...repository.InsertCriteria) (*Product, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Product, criteria ...repository.InsertCriteria) (*Product, error)
}

// Categories is the category repository
type Categories interface {
	repository.Repository[*Category]

	DeleteEmpty(ctx context.Context, id uuid.UUID) error
	DeleteEmptyTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type products struct {
	repository.Repository[*Product]
	db *bun.DB
}

var _ Products = (*products)(nil)

func NewProductsRepository(db *bun.DB) Products {
	repo := repository.NewRepository[*Product](db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &products{
		Repository: repo,
		db:         db,
	}
}

func (r *products) Create(ctx context.Context, record *Product, criteria ...repository.InsertCriteria) (*Product, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *products) CreateTx(ctx context.Context, tx bun.IDB, record *Product, criteria ...repository.InsertCriteria) (*Product, error) {
	if record != nil && record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *products) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]*Product, error) {
	return r.ListByCategoryTx(ctx, r.db, categoryID)
}

func (r *products) ListByCategoryTx(ctx context.Context, tx bun.IDB, categoryID uuid.UUID) ([]*Product, error) {
	var records []*Product
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.category_id = ?", categoryID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

type categories struct {
	repository.Repository[*Category]
	db *bun.DB
}

var _ Categories = (*categories)(nil)

func NewCategoriesRepository(db *bun.DB) Categories {
	repo := repository.NewRepository[*Category](db, repository.ModelHandlers[*Category]{
		NewRecord: func() *Category { return &Category{} },
		GetID: func(c *Category) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *Category, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &categories{
		Repository: repo,
		db:         db,
	}
}

// DeleteEmpty removes a category only when no product references it.
func (r *categories) DeleteEmpty(ctx context.Context, id uuid.UUID) error {
	return r.DeleteEmptyTx(ctx, r.db, id)
}

func (r *categories) DeleteEmptyTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	inUse, err := tx.NewSelect().
		Model((*Product)(nil)).
		Where("?TableAlias.category_id = ?", id).
		Exists(ctx)
	if err != nil {
		return err
	}

	if inUse {
		return ErrCategoryInUse.Clone().
			WithMetadata(map[string]any{"category_id": id.String()})
	}

	record := &Category{ID: id}
	_, err = tx.NewDelete().
		Model(record).
		WherePK().
		Exec(ctx)
	return err
}
