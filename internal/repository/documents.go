package repository

import (
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is stored as decimal strings so no precision is lost in BSON doubles.

type dimensionsDocument struct {
	Length *float64 `bson:"length,omitempty"`
	Width  *float64 `bson:"width,omitempty"`
	Height *float64 `bson:"height,omitempty"`
	Weight *float64 `bson:"weight,omitempty"`
	Area   *float64 `bson:"area,omitempty"`
	Volume *float64 `bson:"volume,omitempty"`
}

type variationDocument struct {
	ID           string             `bson:"id"`
	Price        string             `bson:"price,omitempty"`
	RegularPrice string             `bson:"regular_price,omitempty"`
	SalePrice    string             `bson:"sale_price,omitempty"`
	Dimensions   dimensionsDocument `bson:"dimensions"`
}

// ProductDocument is the MongoDB shape of a product.
type ProductDocument struct {
	ID           string              `bson:"_id"`
	Name         string              `bson:"name"`
	Price        string              `bson:"price"`
	MinimumPrice string              `bson:"minimum_price,omitempty"`
	Dimensions   dimensionsDocument  `bson:"dimensions"`
	Stock        *float64            `bson:"stock,omitempty"`
	Variations   []variationDocument `bson:"variations,omitempty"`
	UpdatedAt    primitive.DateTime  `bson:"updated_at"`
}

func newProductDocument(p *model.Product) ProductDocument {
	doc := ProductDocument{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price.String(),
		MinimumPrice: nullString(p.MinimumPrice),
		Dimensions:   dimensionsDocument(p.Dimensions),
		Stock:        p.Stock,
		UpdatedAt:    primitive.NewDateTimeFromTime(p.UpdatedAt),
	}
	for _, v := range p.Variations {
		doc.Variations = append(doc.Variations, variationDocument{
			ID:           v.ID,
			Price:        nullString(v.Price),
			RegularPrice: nullString(v.RegularPrice),
			SalePrice:    nullString(v.SalePrice),
			Dimensions:   dimensionsDocument(v.Dimensions),
		})
	}
	return doc
}

func (d ProductDocument) model() *model.Product {
	p := &model.Product{
		ID:           d.ID,
		Name:         d.Name,
		Price:        decimalOrZero(d.Price),
		MinimumPrice: nullDecimal(d.MinimumPrice),
		Dimensions:   model.Dimensions(d.Dimensions),
		Stock:        d.Stock,
		UpdatedAt:    d.UpdatedAt.Time().UTC(),
	}
	for _, v := range d.Variations {
		p.Variations = append(p.Variations, model.Variation{
			ID:           v.ID,
			Price:        nullDecimal(v.Price),
			RegularPrice: nullDecimal(v.RegularPrice),
			SalePrice:    nullDecimal(v.SalePrice),
			Dimensions:   model.Dimensions(v.Dimensions),
		})
	}
	return p
}

type ruleDocument struct {
	RangeStart   float64  `bson:"range_start"`
	RangeEnd     *float64 `bson:"range_end"`
	RegularPrice string   `bson:"regular_price"`
	SalePrice    string   `bson:"sale_price,omitempty"`
}

func newRuleDocuments(rules pricing.Rules) []ruleDocument {
	docs := make([]ruleDocument, 0, len(rules))
	for _, r := range rules {
		docs = append(docs, ruleDocument{
			RangeStart:   r.RangeStart,
			RangeEnd:     r.RangeEnd,
			RegularPrice: r.RegularPrice.String(),
			SalePrice:    nullString(r.SalePrice),
		})
	}
	return docs
}

func rulesFromDocuments(docs []ruleDocument) pricing.Rules {
	rules := make(pricing.Rules, 0, len(docs))
	for _, d := range docs {
		rules = append(rules, pricing.Rule{
			RangeStart:   d.RangeStart,
			RangeEnd:     d.RangeEnd,
			RegularPrice: decimalOrZero(d.RegularPrice),
			SalePrice:    nullDecimal(d.SalePrice),
		})
	}
	return rules
}

// QuoteDocument is the MongoDB shape of a quote.
type QuoteDocument struct {
	ID             string             `bson:"_id"`
	ProductID      string             `bson:"product_id"`
	VariationID    string             `bson:"variation_id,omitempty"`
	CalculatorType string             `bson:"calculator_type"`
	Inputs         map[string]string  `bson:"inputs,omitempty"`
	TotalValue     float64            `bson:"total_value"`
	TotalUnit      string             `bson:"total_unit"`
	OveragePercent float64            `bson:"overage_percent"`
	OverageBase    float64            `bson:"overage_original"`
	OverageAmount  float64            `bson:"overage_amount"`
	Quantity       int                `bson:"quantity"`
	Price          string             `bson:"price"`
	RequestID      string             `bson:"request_id,omitempty"`
	CreatedAt      primitive.DateTime `bson:"created_at"`
}

func newQuoteDocument(q *model.Quote) QuoteDocument {
	return QuoteDocument{
		ID:             q.ID,
		ProductID:      q.ProductID,
		VariationID:    q.VariationID,
		CalculatorType: q.CalculatorType,
		Inputs:         q.Inputs,
		TotalValue:     q.Total.Value,
		TotalUnit:      q.Total.Unit,
		OveragePercent: q.Overage.Percent,
		OverageBase:    q.Overage.Original,
		OverageAmount:  q.Overage.Amount,
		Quantity:       q.Quantity,
		Price:          q.Price.String(),
		RequestID:      q.RequestID,
		CreatedAt:      primitive.NewDateTimeFromTime(q.CreatedAt),
	}
}

func (d QuoteDocument) model() *model.Quote {
	return &model.Quote{
		ID:             d.ID,
		ProductID:      d.ProductID,
		VariationID:    d.VariationID,
		CalculatorType: d.CalculatorType,
		Inputs:         d.Inputs,
		Total:          model.QuoteMeasurement{Value: d.TotalValue, Unit: d.TotalUnit},
		Overage: model.QuoteOverage{
			Percent:  d.OveragePercent,
			Original: d.OverageBase,
			Amount:   d.OverageAmount,
		},
		Quantity:  d.Quantity,
		Price:     decimalOrZero(d.Price),
		RequestID: d.RequestID,
		CreatedAt: d.CreatedAt.Time().UTC(),
	}
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func nullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalize turns the BSON container types the driver decodes into
// interface values back into plain maps and slices.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.M:
		return normalizeMap(t)
	case map[string]any:
		return normalizeMap(t)
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case primitive.A:
		return normalizeSlice(t)
	case []any:
		return normalizeSlice(t)
	}
	return v
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalize(v)
	}
	return out
}

func normalizeSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = normalize(v)
	}
	return out
}
