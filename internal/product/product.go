package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Categories is the closed set of product categories.
var Categories = []string{"chairs", "sofas", "beds", "poufs", "tables"}

// Subcategories is the closed set of subcategories across all categories.
// Consistency between category and subcategory is deliberately not enforced:
// "dining" is shared by chairs and tables, and nothing stops a chair from
// carrying a bed subcategory.
var Subcategories = []string{
	// chairs
	"bar", "dining", "office",
	// sofas
	"corner", "straight", "modular", "folding", "armchairs",
	// beds
	"single", "double", "kids", "sofa_bed",
	// poufs
	"with_storage", "without_storage", "bench", "ottoman",
	// tables
	"coffee", "computer", "console",
}

// Materials is the allowed vocabulary for the materials list.
var Materials = []string{
	"wooden", "metal", "soft", "withArmrests",
	"leather", "velvet", "textile", "eco_leather",
	"glass", "marble",
}

type Dimensions struct {
	Width  float64 `json:"width" bson:"width" validate:"required,gt=0"`
	Height float64 `json:"height" bson:"height" validate:"required,gt=0"`
	Depth  float64 `json:"depth" bson:"depth" validate:"required,gt=0"`
}

type Specification struct {
	Name  string `json:"name" bson:"name"`
	Value string `json:"value" bson:"value"`
}

type Product struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name           string             `json:"name" bson:"name" validate:"required"`
	Category       string             `json:"category" bson:"category" validate:"required,oneof=chairs sofas beds poufs tables"`
	Subcategory    string             `json:"subcategory" bson:"subcategory" validate:"required,oneof=bar dining office corner straight modular folding armchairs single double kids sofa_bed with_storage without_storage bench ottoman coffee computer console"`
	Materials      []string           `json:"materials" bson:"materials" validate:"omitempty,dive,oneof=wooden metal soft withArmrests leather velvet textile eco_leather glass marble"`
	Price          float64            `json:"price" bson:"price" validate:"required,gt=0"`
	MonthlyPayment float64            `json:"monthlyPayment,omitempty" bson:"monthlyPayment,omitempty"`
	Images         []string           `json:"images" bson:"images" validate:"required,min=1"`
	Description    string             `json:"description" bson:"description" validate:"required"`
	Dimensions     Dimensions         `json:"dimensions" bson:"dimensions"`
	IsNew          bool               `json:"isNew" bson:"isNew"`
	IsPopular      bool               `json:"isPopular" bson:"isPopular"`
	InStock        bool               `json:"inStock" bson:"inStock"`
	Specifications []Specification    `json:"specifications,omitempty" bson:"specifications,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ValidationError carries the overall message plus per-field detail so the
// handler can return the same shape the admin frontend expects.
type ValidationError struct {
	Message string   `json:"message"`
	Fields  []string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, "; ")
}

func newValidationError(message string, fields ...string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

var validate = validator.New()

// Validate checks the record against its declarative constraints without
// touching the database, so it can run (and be tested) before persistence.
func Validate(p Product) *ValidationError {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return newValidationError("product validation failed")
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldMessage(fe))
	}
	return &ValidationError{Message: "product validation failed", Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// IsAllowedMaterial reports whether the value belongs to the materials vocabulary.
func IsAllowedMaterial(value string) bool {
	for _, m := range Materials {
		if m == value {
			return true
		}
	}
	return false
}
