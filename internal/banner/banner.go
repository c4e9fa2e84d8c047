package banner

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Positions and Types are the closed vocabularies for banner placement.
var (
	Positions = []string{"main", "category", "product", "promo"}
	Types     = []string{"promotion", "new", "popular", "custom"}
)

type Banner struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title           string             `json:"title" bson:"title" validate:"required"`
	Description     string             `json:"description,omitempty" bson:"description,omitempty"`
	Image           string             `json:"image" bson:"image" validate:"required"`
	Link            string             `json:"link,omitempty" bson:"link,omitempty"`
	Position        string             `json:"position" bson:"position" validate:"required,oneof=main category product promo"`
	IsActive        bool               `json:"isActive" bson:"isActive"`
	StartDate       time.Time          `json:"startDate" bson:"startDate" validate:"required"`
	EndDate         time.Time          `json:"endDate" bson:"endDate" validate:"required"`
	Priority        int                `json:"priority" bson:"priority"`
	Type            string             `json:"type" bson:"type" validate:"required,oneof=promotion new popular custom"`
	BackgroundColor string             `json:"backgroundColor,omitempty" bson:"backgroundColor,omitempty"`
	TextColor       string             `json:"textColor,omitempty" bson:"textColor,omitempty"`
	ButtonText      string             `json:"buttonText,omitempty" bson:"buttonText,omitempty"`
	ButtonColor     string             `json:"buttonColor,omitempty" bson:"buttonColor,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ActiveAt reports whether the banner should currently be shown: it must be
// switched on AND the moment must fall within [StartDate, EndDate].
func (b Banner) ActiveAt(now time.Time) bool {
	return b.IsActive && !now.Before(b.StartDate) && !now.After(b.EndDate)
}

// ValidationError carries the overall message plus per-field detail, matching
// the response shape of the create endpoint.
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

var validate = validator.New()

// Validate checks the declarative constraints without touching the database.
func Validate(b Banner) []string {
	err := validate.Struct(b)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"banner validation failed"}
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			details = append(details, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return details
}
