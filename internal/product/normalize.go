package product

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawForm is the untyped multipart payload of a product create request.
// materials, dimensions and specifications arrive as JSON-encoded text fields
// next to the binary image parts; Images holds the paths the upload middleware
// already wrote to disk.
type RawForm struct {
	Name           string
	Category       string
	Subcategory    string
	Description    string
	Price          string
	MonthlyPayment string
	Materials      string
	Dimensions     string
	Specifications string
	IsNew          string
	IsPopular      string
	InStock        string
	Images         []string
}

// NormalizeForm turns a raw multipart form into a validated Product record or
// reports a validation error. It never touches the database; the caller is
// responsible for removing the already-uploaded files when it fails.
func NormalizeForm(raw RawForm) (Product, *ValidationError) {
	p := Product{
		Name:        strings.TrimSpace(raw.Name),
		Category:    raw.Category,
		Subcategory: raw.Subcategory,
		Description: raw.Description,
		// schema defaults: new and in stock unless the form says otherwise
		IsNew:   parseBoolDefault(raw.IsNew, true),
		InStock: parseBoolDefault(raw.InStock, true),
	}
	p.IsPopular = parseBoolDefault(raw.IsPopular, false)

	if raw.Materials != "" {
		materials, verr := parseMaterials(raw.Materials)
		if verr != nil {
			return Product{}, verr
		}
		p.Materials = materials
	}

	if raw.Dimensions != "" {
		dims, verr := parseDimensions(raw.Dimensions)
		if verr != nil {
			return Product{}, verr
		}
		p.Dimensions = dims
	}

	if len(raw.Images) == 0 {
		return Product{}, newValidationError("at least one image is required")
	}
	p.Images = make([]string, len(raw.Images))
	for i, path := range raw.Images {
		p.Images[i] = strings.ReplaceAll(path, `\`, "/")
	}

	if raw.Price != "" {
		price, err := strconv.ParseFloat(raw.Price, 64)
		if err != nil || price <= 0 {
			return Product{}, newValidationError("price must be a positive number")
		}
		p.Price = price
	}

	if raw.MonthlyPayment != "" {
		monthly, err := strconv.ParseFloat(raw.MonthlyPayment, 64)
		if err != nil || monthly < 0 {
			return Product{}, newValidationError("monthlyPayment must be a number")
		}
		p.MonthlyPayment = monthly
	}

	if raw.Specifications != "" {
		var specs []Specification
		if err := json.Unmarshal([]byte(raw.Specifications), &specs); err != nil {
			return Product{}, newValidationError("invalid specifications format")
		}
		p.Specifications = specs
	}

	if verr := Validate(p); verr != nil {
		return Product{}, verr
	}
	return p, nil
}

func parseMaterials(encoded string) ([]string, *ValidationError) {
	var materials []string
	if err := json.Unmarshal([]byte(encoded), &materials); err != nil {
		return nil, newValidationError("invalid materials format")
	}
	for _, m := range materials {
		if !IsAllowedMaterial(m) {
			return nil, newValidationError("invalid materials format", "unknown material: "+m)
		}
	}
	return materials, nil
}

// parseDimensions accepts either JSON numbers or numeric strings for each
// measurement (the admin form sends strings) and coerces them to numbers.
func parseDimensions(encoded string) (Dimensions, *ValidationError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(encoded), &fields); err != nil {
		return Dimensions{}, newValidationError("invalid dimensions format")
	}

	var dims Dimensions
	for _, m := range []struct {
		key  string
		dest *float64
	}{
		{"width", &dims.Width},
		{"height", &dims.Height},
		{"depth", &dims.Depth},
	} {
		rawValue, ok := fields[m.key]
		if !ok {
			return Dimensions{}, newValidationError("invalid dimensions format", m.key+" is required")
		}
		value, err := coerceNumber(rawValue)
		if err != nil {
			return Dimensions{}, newValidationError("invalid dimensions format", m.key+" must be a number")
		}
		*m.dest = value
	}
	return dims, nil
}

func coerceNumber(raw json.RawMessage) (float64, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseBoolDefault(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
