// Package model defines the storage-neutral domain entities of the pricing service.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimensions are a product's catalog measurements, expressed in the store
// unit defaults. A nil field is unset.
//
// @Description Catalog measurements; area and volume are explicit overrides
type Dimensions struct {
	Length *float64 `json:"length,omitempty" example:"4"`
	Width  *float64 `json:"width,omitempty" example:"5"`
	Height *float64 `json:"height,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	// Area overrides the area derived from length and width.
	Area *float64 `json:"area,omitempty"`
	// Volume overrides the derived volume.
	Volume *float64 `json:"volume,omitempty"`
} // @name Dimensions

// Inherit returns d with every unset field taken from parent.
func (d Dimensions) Inherit(parent Dimensions) Dimensions {
	pick := func(own, inherited *float64) *float64 {
		if own != nil {
			return own
		}
		return inherited
	}
	return Dimensions{
		Length: pick(d.Length, parent.Length),
		Width:  pick(d.Width, parent.Width),
		Height: pick(d.Height, parent.Height),
		Weight: pick(d.Weight, parent.Weight),
		Area:   pick(d.Area, parent.Area),
		Volume: pick(d.Volume, parent.Volume),
	}
}

// Variation is one purchasable variant of a variable product.
//
// @Description Product variation with its own prices and dimensions
type Variation struct {
	ID           string              `json:"id" example:"v-1"`
	Price        decimal.NullDecimal `json:"price" swaggertype:"string" example:"12.50"`
	RegularPrice decimal.NullDecimal `json:"regular_price" swaggertype:"string"`
	SalePrice    decimal.NullDecimal `json:"sale_price" swaggertype:"string"`
	Dimensions   Dimensions          `json:"dimensions"`
} // @name Variation

// Product carries the catalog attributes the pricing engine reads.
//
// @Description Catalog product sold by measurement
type Product struct {
	ID   string `json:"id" example:"tile-42"`
	Name string `json:"name" example:"Oak flooring"`
	// Price is the price per pricing unit in pricing-calculator mode, the item
	// price otherwise.
	Price        decimal.Decimal     `json:"price" swaggertype:"string" example:"3.25"`
	MinimumPrice decimal.NullDecimal `json:"minimum_price" swaggertype:"string"`
	Dimensions   Dimensions          `json:"dimensions"`
	// Stock is the available stock, counted in pricing units when inventory is
	// tracked by measurement. Nil means untracked.
	Stock      *float64    `json:"stock,omitempty"`
	Variations []Variation `json:"variations,omitempty"`
	UpdatedAt  time.Time   `json:"updated_at"`
} // @name Product

// Variation returns the variation with the given id, with unset dimensions
// inherited from the product.
func (p *Product) Variation(id string) (Variation, bool) {
	for _, v := range p.Variations {
		if v.ID == id {
			v.Dimensions = v.Dimensions.Inherit(p.Dimensions)
			return v, true
		}
	}
	return Variation{}, false
}

// ResolvedVariations returns every variation with inherited dimensions.
func (p *Product) ResolvedVariations() []Variation {
	out := make([]Variation, len(p.Variations))
	for i, v := range p.Variations {
		v.Dimensions = v.Dimensions.Inherit(p.Dimensions)
		out[i] = v
	}
	return out
}
