package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Category groups products. Deleting a category is rejected while products
// still reference it; the repository enforces that, not the database.
type Category struct {
	bun.BaseModel `bun:"table:categories,alias:cat"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Products      []*Product `bun:"rel:has-many,join:id=category_id" json:"products,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Product is a catalog entry. Price is stored in cents to avoid float
// drift; Code carries the numeric product code.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:prd"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	PriceCents    int64      `bun:"price_cents,notnull" json:"price_cents"`
	Active        bool       `bun:"status,notnull,default:true" json:"status"`
	Code          int        `bun:"code" json:"code,omitempty"`
	CategoryID    uuid.UUID  `bun:"category_id,notnull,type:uuid" json:"category_id,omitempty"`
	Category      *Category  `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ApplyUpdate copies the non nil fields of the patch onto the product.
func (p *Product) ApplyUpdate(patch ProductPatch) *Product {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.PriceCents != nil {
		p.PriceCents = *patch.PriceCents
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if patch.Code != nil {
		p.Code = *patch.Code
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	return p
}

// ProductPatch is a partial product update; nil fields are left untouched.
type ProductPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	PriceCents  *int64     `json:"price_cents,omitempty"`
	Active      *bool      `json:"status,omitempty"`
	Code        *int       `json:"code,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}
