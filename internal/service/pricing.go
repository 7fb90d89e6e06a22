package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/metrics"
	"github.com/guttosm/measure-pricing-service/internal/pricing"
	"github.com/guttosm/measure-pricing-service/internal/repository"
)

var (
	// ErrVariationNotFound is returned when a variation id matches nothing on the product.
	ErrVariationNotFound = errors.New("variation not found")
	// ErrCalculatorMode is returned when an operation does not apply to the
	// product's calculator mode.
	ErrCalculatorMode = errors.New("operation not available in the product's calculator mode")
	// ErrInsufficientStock is returned when a line needs more stock than the product has.
	ErrInsufficientStock = errors.New("insufficient stock for the requested measurement")
)

// MeasurementValue is a measurement as reported to clients.
type MeasurementValue struct {
	Name  string  `json:"name,omitempty"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

func valueOf(m *measurement.Measurement) MeasurementValue {
	return MeasurementValue{Name: string(m.Name()), Label: m.Label(), Value: m.Value(), Unit: m.Unit()}
}

// TotalResult is a combined customer measurement with overage applied.
type TotalResult struct {
	CalculatorType calculator.Type    `json:"calculator_type"`
	Inputs         []MeasurementValue `json:"inputs"`
	Total          MeasurementValue   `json:"total"`
	Overage        Overage            `json:"overage"`
}

// PriceRequest asks for the price of one line.
type PriceRequest struct {
	ProductID   string
	VariationID string
	Inputs      map[string]string
	// Quantity is the number of items; values below 1 count as 1.
	Quantity  int
	RequestID string
}

// PriceQuote is a resolved line price.
type PriceQuote struct {
	QuoteID     string              `json:"quote_id,omitempty"`
	ProductID   string              `json:"product_id"`
	VariationID string              `json:"variation_id,omitempty"`
	Line        TotalResult         `json:"line"`
	Price       pricing.PriceResult `json:"price"`
	Quantity    int                 `json:"quantity"`
	LineTotal   decimal.Decimal     `json:"line_total"`
	// StockAmount is the stock the line consumes, in pricing units, when
	// inventory is tracked by measurement.
	StockAmount *float64 `json:"stock_amount,omitempty"`
	// Weight is the calculated weight of one item, when enabled.
	Weight    *MeasurementValue `json:"weight,omitempty"`
	ReorderOf string            `json:"reorder_of,omitempty"`
}

// QuantityResult is the number of catalog items covering a customer's need.
type QuantityResult struct {
	CalculatorType     calculator.Type  `json:"calculator_type"`
	Total              MeasurementValue `json:"total"`
	Overage            Overage          `json:"overage"`
	ProductMeasurement MeasurementValue `json:"product_measurement"`
	Quantity           int              `json:"quantity"`
}

// ProductMeasurement is the measurement a product represents.
type ProductMeasurement struct {
	ProductID      string           `json:"product_id"`
	VariationID    string           `json:"variation_id,omitempty"`
	CalculatorType calculator.Type  `json:"calculator_type"`
	Measurement    MeasurementValue `json:"measurement"`
	PricingUnit    string           `json:"pricing_unit,omitempty"`
	PricingValue   *float64         `json:"pricing_value,omitempty"`
}

// PricePerUnitRange spans the per-unit prices of a product's variations.
type PricePerUnitRange struct {
	Unit string          `json:"unit"`
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
}

// PriceSummary is the catalog display view of a product's pricing.
type PriceSummary struct {
	ProductID      string             `json:"product_id"`
	CalculatorType calculator.Type    `json:"calculator_type"`
	Rules          pricing.Summary    `json:"rules"`
	Variations     *PricePerUnitRange `json:"variations,omitempty"`
}

// Conversion is the outcome of a unit conversion request.
type Conversion struct {
	Value     float64 `json:"value"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Result    float64 `json:"result"`
	Converted bool    `json:"converted"`
}

// PricingService resolves measurements and prices for products.
type PricingService interface {
	Convert(value float64, from, to string) (Conversion, error)
	Total(ctx context.Context, productID string, inputs map[string]string) (*TotalResult, error)
	Price(ctx context.Context, req PriceRequest) (*PriceQuote, error)
	Quantity(ctx context.Context, productID, variationID string, inputs map[string]string) (*QuantityResult, error)
	Measurement(ctx context.Context, productID, variationID, calculatorType string) (*ProductMeasurement, error)
	PriceSummary(ctx context.Context, productID string) (*PriceSummary, error)
	Reorder(ctx context.Context, quoteID, requestID string) (*PriceQuote, error)
}

// PricingOption configures a PricingServiceImpl.
type PricingOption func(*PricingServiceImpl)

// WithPrecision sets the decimals totals are rounded to.
func WithPrecision(precision int) PricingOption {
	return func(s *PricingServiceImpl) {
		s.precision = precision
	}
}

// WithPriceRounding rounds calculated prices to decimals places.
func WithPriceRounding(decimals int32) PricingOption {
	return func(s *PricingServiceImpl) {
		s.roundPrices = true
		s.priceDecimals = decimals
	}
}

// WithStrictConversions rejects conversions between unrelated units instead
// of passing values through.
func WithStrictConversions(strict bool) PricingOption {
	return func(s *PricingServiceImpl) {
		s.strict = strict
	}
}

// WithDerivationTransform installs a transform on derived product measurements.
func WithDerivationTransform(fn Transform) PricingOption {
	return func(s *PricingServiceImpl) {
		s.transform = fn
	}
}

// PricingServiceImpl implements PricingService.
type PricingServiceImpl struct {
	products repository.ProductsRepositoryInterface
	store    *SettingsStore
	units    UnitDefaultsService
	quotes   QuotesService

	precision     int
	strict        bool
	roundPrices   bool
	priceDecimals int32
	transform     Transform

	converter measurement.Converter
	combiner  *Combiner
	deriver   *Deriver
}

// NewPricingService creates a pricing service. quotes may be nil, in which
// case prices are not persisted.
func NewPricingService(
	products repository.ProductsRepositoryInterface,
	store *SettingsStore,
	units UnitDefaultsService,
	quotes QuotesService,
	opts ...PricingOption,
) *PricingServiceImpl {
	s := &PricingServiceImpl{
		products:  products,
		store:     store,
		units:     units,
		quotes:    quotes,
		precision: DefaultPrecision,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.converter = measurement.NewConverter(s.strict)
	s.combiner = NewCombiner(s.precision, s.strict)
	s.deriver = NewDeriver(WithStrictConversion(s.strict), WithTransform(s.transform))
	return s
}

// Convert converts value between units under the service's conversion policy.
func (s *PricingServiceImpl) Convert(value float64, from, to string) (Conversion, error) {
	c, err := convertValue(s.converter, value, from, to)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Value: value, From: from, To: to, Result: c.value, Converted: c.converted}, nil
}

// Total validates inputs against the product's calculator and returns the
// combined measurement with the configured overage applied.
func (s *PricingServiceImpl) Total(ctx context.Context, productID string, inputs map[string]string) (*TotalResult, error) {
	if _, err := getProduct(ctx, s.products, productID); err != nil {
		return nil, err
	}
	settings, _, err := s.store.Load(ctx, productID)
	if err != nil {
		return nil, err
	}
	line, _, err := s.line(settings, inputs)
	return line, err
}

// line reads and combines inputs. The returned measurement carries the
// overage-adjusted total.
func (s *PricingServiceImpl) line(settings *calculator.Settings, raw map[string]string) (*TotalResult, *measurement.Measurement, error) {
	named := make(map[measurement.Name]string, len(raw))
	for k, v := range raw {
		named[measurement.Name(k)] = v
	}
	inputs, err := settings.ReadInputs(named)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.combiner.Total(settings, inputs)
	if err != nil {
		return nil, nil, err
	}
	line, adjusted := withOverage(settings, inputs, total, s.combiner.ApplyOverage(total.Value(), settings.PricingOverage()))
	return line, adjusted, nil
}

func withOverage(
	settings *calculator.Settings,
	inputs []*measurement.Measurement,
	total *measurement.Measurement,
	overage Overage,
) (*TotalResult, *measurement.Measurement) {
	adjusted := measurement.NewNamed(total.Name(), total.Label(), total.Unit(), overage.Total)
	res := &TotalResult{
		CalculatorType: settings.CalculatorType(),
		Inputs:         make([]MeasurementValue, len(inputs)),
		Total:          valueOf(adjusted),
		Overage:        overage,
	}
	for i, m := range inputs {
		res.Inputs[i] = valueOf(m)
	}
	return res, adjusted
}

// Price resolves the price of one line and stores it as a quote.
func (s *PricingServiceImpl) Price(ctx context.Context, req PriceRequest) (*PriceQuote, error) {
	start := time.Now()

	product, variation, err := s.product(ctx, req.ProductID, req.VariationID)
	if err != nil {
		return nil, err
	}
	settings, rules, err := s.store.Load(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	line, total, err := s.line(settings, req.Inputs)
	if err != nil {
		recordResolution(start, settings, err)
		return nil, err
	}

	quote, err := s.priceLine(ctx, lineRequest{
		product:   product,
		variation: variation,
		settings:  settings,
		rules:     rules,
		line:      line,
		total:     total,
		inputs:    req.Inputs,
		quantity:  req.Quantity,
		requestID: req.RequestID,
	})
	recordResolution(start, settings, err)
	return quote, err
}

// Reorder re-prices a stored quote against the product's current
// configuration. The stored total includes the overage it was sold with;
// it is removed before the current overage is applied.
func (s *PricingServiceImpl) Reorder(ctx context.Context, quoteID, requestID string) (*PriceQuote, error) {
	start := time.Now()

	if s.quotes == nil {
		return nil, ErrRepositoryNotConfigured
	}
	stored, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	product, variation, err := s.product(ctx, stored.ProductID, stored.VariationID)
	if err != nil {
		return nil, err
	}
	settings, rules, err := s.store.Load(ctx, stored.ProductID)
	if err != nil {
		return nil, err
	}

	original := s.combiner.RemoveOverage(stored.Total.Value, stored.Overage.Percent)
	value := original.Original
	unit := stored.Total.Unit
	if to := settings.PricingUnit(); to != "" && to != unit {
		c, err := convertValue(s.converter, value, unit, to)
		if err != nil {
			return nil, err
		}
		if c.converted {
			value, unit = s.combiner.round(c.value), to
		}
	}

	name := settings.CalculatorType().ResultName(settings.EnabledDimension())
	base := measurement.NewNamed(name, "", unit, value)
	line, total := withOverage(settings, nil, base, s.combiner.ApplyOverage(value, settings.PricingOverage()))

	quote, err := s.priceLine(ctx, lineRequest{
		product:   product,
		variation: variation,
		settings:  settings,
		rules:     rules,
		line:      line,
		total:     total,
		inputs:    stored.Inputs,
		quantity:  stored.Quantity,
		requestID: requestID,
	})
	recordResolution(start, settings, err)
	if err != nil {
		return nil, err
	}
	quote.ReorderOf = stored.ID
	return quote, nil
}

type lineRequest struct {
	product   *model.Product
	variation *model.Variation
	settings  *calculator.Settings
	rules     pricing.Rules
	line      *TotalResult
	total     *measurement.Measurement
	inputs    map[string]string
	quantity  int
	requestID string
}

func (s *PricingServiceImpl) priceLine(ctx context.Context, req lineRequest) (*PriceQuote, error) {
	basePrice := req.product.Price
	dims := req.product.Dimensions
	variationID := ""
	if req.variation != nil {
		variationID = req.variation.ID
		dims = req.variation.Dimensions
		if req.variation.Price.Valid {
			basePrice = req.variation.Price.Decimal
		}
	}

	result, err := pricing.CalculatePrice(pricing.PriceInput{
		Settings:     req.settings,
		Rules:        req.rules,
		BasePrice:    basePrice,
		MinimumPrice: req.product.MinimumPrice,
		Total:        req.total,
		Round:        s.roundPrices,
		Decimals:     s.priceDecimals,
	})
	if err != nil {
		return nil, err
	}

	quantity := req.quantity
	if quantity < 1 {
		quantity = 1
	}

	out := &PriceQuote{
		ProductID:   req.product.ID,
		VariationID: variationID,
		Line:        *req.line,
		Price:       result,
		Quantity:    quantity,
		LineTotal:   result.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}

	pricingUnit := req.settings.PricingUnit()
	if req.settings.IsPricingInventoryEnabled() {
		amount := s.combiner.round(float64(quantity) * req.total.ValueIn(pricingUnit))
		out.StockAmount = &amount
		if req.product.Stock != nil && amount > *req.product.Stock {
			return nil, fmt.Errorf("%w: need %g %s, have %g", ErrInsufficientStock, amount, pricingUnit, *req.product.Stock)
		}
	}
	if req.settings.IsPricingCalculatedWeightEnabled() && dims.Weight != nil {
		weight := valueOf(measurement.NewNamed(
			measurement.NameWeight, "Weight",
			s.units.Units(ctx).Weight,
			s.combiner.round(*dims.Weight*req.total.ValueIn(pricingUnit)),
		))
		out.Weight = &weight
	}

	s.storeQuote(ctx, out, req)
	return out, nil
}

// storeQuote persists a resolved line. Storage failures do not fail the
// price resolution.
func (s *PricingServiceImpl) storeQuote(ctx context.Context, out *PriceQuote, req lineRequest) {
	if s.quotes == nil {
		return
	}
	quote := &model.Quote{
		ProductID:      out.ProductID,
		VariationID:    out.VariationID,
		CalculatorType: string(req.settings.CalculatorType()),
		Inputs:         req.inputs,
		Total:          model.QuoteMeasurement{Value: req.total.Value(), Unit: req.total.Unit()},
		Overage: model.QuoteOverage{
			Percent:  req.line.Overage.Percent,
			Original: req.line.Overage.Original,
			Amount:   req.line.Overage.Amount,
		},
		Quantity:  out.Quantity,
		Price:     out.Price.Price,
		RequestID: req.requestID,
	}
	if err := s.quotes.Create(ctx, quote); err != nil {
		log.Warn().Err(err).Str("product_id", out.ProductID).Msg("quote not stored")
		return
	}
	out.QuoteID = quote.ID
}

// Quantity returns how many catalog items cover the customer's need, for
// products in quantity-calculator mode.
func (s *PricingServiceImpl) Quantity(ctx context.Context, productID, variationID string, inputs map[string]string) (*QuantityResult, error) {
	product, variation, err := s.product(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	settings, _, err := s.store.Load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !settings.IsQuantityCalculatorEnabled() {
		return nil, ErrCalculatorMode
	}

	line, total, err := s.line(settings, inputs)
	if err != nil {
		return nil, err
	}

	dims := product.Dimensions
	if variation != nil {
		dims = variation.Dimensions
	}
	each, err := s.deriver.Derive(DerivationInput{
		Type:       settings.CalculatorType(),
		Enabled:    settings.EnabledDimension(),
		Dimensions: dims,
		Units:      s.units.Units(ctx),
	})
	if err != nil {
		return nil, err
	}

	needed, err := convertValue(s.converter, total.Value(), total.Unit(), each.Unit())
	if err != nil {
		return nil, err
	}

	return &QuantityResult{
		CalculatorType:     settings.CalculatorType(),
		Total:              line.Total,
		Overage:            line.Overage,
		ProductMeasurement: valueOf(each),
		Quantity:           ItemsNeeded(needed.value, each.Value()),
	}, nil
}

// ItemsNeeded is ceil(needed / each), never below 1. A zero product
// measurement needs one item.
func ItemsNeeded(needed, each float64) int {
	if each <= 0 || needed <= 0 {
		return 1
	}
	qty := decimal.NewFromFloat(needed).Div(decimal.NewFromFloat(each)).Ceil().IntPart()
	if qty < 1 {
		return 1
	}
	return int(qty)
}

// Measurement derives the product's measurement for its calculator type,
// or for calculatorType when given.
func (s *PricingServiceImpl) Measurement(ctx context.Context, productID, variationID, calculatorType string) (*ProductMeasurement, error) {
	product, variation, err := s.product(ctx, productID, variationID)
	if err != nil {
		return nil, err
	}
	settings, _, err := s.store.Load(ctx, productID)
	if err != nil {
		return nil, err
	}

	t := settings.CalculatorType()
	enabled := settings.EnabledDimension()
	if calculatorType != "" {
		parsed, err := calculator.ParseType(calculatorType)
		if err != nil {
			return nil, calculator.ValidationErrors{{Field: "calculator_type", Message: err.Error()}}
		}
		if parsed != t {
			enabled = ""
		}
		t = parsed
	}

	dims := product.Dimensions
	if variation != nil {
		dims = variation.Dimensions
	}
	m, err := s.deriver.Derive(DerivationInput{Type: t, Enabled: enabled, Dimensions: dims, Units: s.units.Units(ctx)})
	if err != nil {
		return nil, err
	}

	out := &ProductMeasurement{
		ProductID:      productID,
		VariationID:    variationID,
		CalculatorType: t,
		Measurement:    valueOf(m),
	}
	if unit := settings.PricingUnit(); unit != "" && t == settings.CalculatorType() {
		c, err := convertValue(s.converter, m.Value(), m.Unit(), unit)
		if err != nil {
			return nil, err
		}
		if c.converted {
			out.PricingUnit = unit
			out.PricingValue = &c.value
		}
	}
	return out, nil
}

// PriceSummary answers the aggregate rule queries for catalog display and,
// for variable products with pricing enabled, the per-unit price range of
// their variations.
func (s *PricingServiceImpl) PriceSummary(ctx context.Context, productID string) (*PriceSummary, error) {
	product, err := getProduct(ctx, s.products, productID)
	if err != nil {
		return nil, err
	}
	settings, rules, err := s.store.Load(ctx, productID)
	if err != nil {
		return nil, err
	}

	out := &PriceSummary{
		ProductID:      productID,
		CalculatorType: settings.CalculatorType(),
		Rules:          pricing.NewBook(settings, rules).Summary(),
	}
	if unit := settings.PricingUnit(); unit != "" && len(product.Variations) > 0 {
		out.Variations, err = s.variationRange(ctx, product, settings, unit)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PricingServiceImpl) variationRange(ctx context.Context, product *model.Product, settings *calculator.Settings, unit string) (*PricePerUnitRange, error) {
	units := s.units.Units(ctx)
	var out *PricePerUnitRange
	for _, v := range product.ResolvedVariations() {
		m, err := s.deriver.Derive(DerivationInput{
			Type:       settings.CalculatorType(),
			Enabled:    settings.EnabledDimension(),
			Dimensions: v.Dimensions,
			Units:      units,
		})
		if err != nil {
			return nil, err
		}
		c, err := convertValue(s.converter, m.Value(), m.Unit(), unit)
		if err != nil {
			return nil, err
		}
		if c.value <= 0 {
			continue
		}

		price := product.Price
		if v.Price.Valid {
			price = v.Price.Decimal
		}
		perUnit := price.Div(decimal.NewFromFloat(c.value))
		if out == nil {
			out = &PricePerUnitRange{Unit: unit, Min: perUnit, Max: perUnit}
			continue
		}
		out.Min = decimal.Min(out.Min, perUnit)
		out.Max = decimal.Max(out.Max, perUnit)
	}
	return out, nil
}

// product loads a product and, when variationID is set, its variation with
// inherited dimensions.
func (s *PricingServiceImpl) product(ctx context.Context, productID, variationID string) (*model.Product, *model.Variation, error) {
	product, err := getProduct(ctx, s.products, productID)
	if err != nil {
		return nil, nil, err
	}
	if variationID == "" {
		return product, nil, nil
	}
	v, ok := product.Variation(variationID)
	if !ok {
		return nil, nil, ErrVariationNotFound
	}
	return product, &v, nil
}

func recordResolution(start time.Time, settings *calculator.Settings, err error) {
	mode := pricing.ModeFixed
	if settings.IsPricingCalculatorEnabled() {
		mode = pricing.ModePricingCalculator
	}

	result := "success"
	var verrs calculator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &verrs):
		result = "invalid"
	case errors.Is(err, pricing.ErrNoMatchingPriceRule):
		result = "no_rule"
	case errors.Is(err, ErrInsufficientStock):
		result = "insufficient_stock"
	default:
		result = "error"
	}
	metrics.RecordPriceResolution(time.Since(start), mode, result)
}
