package model

import (
	"time"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
)

// UnitDefaultsConfig is one version of the store-wide unit defaults. Exactly
// one configuration is active at a time.
//
// @Description Versioned store unit defaults
type UnitDefaultsConfig struct {
	ID        string                  `json:"id"`
	Units     calculator.UnitDefaults `json:"units"`
	Active    bool                    `json:"active"`
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
	CreatedBy string                  `json:"created_by,omitempty"`
	UpdatedBy string                  `json:"updated_by,omitempty"`
} // @name UnitDefaultsConfig
