package session

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/amirasaad/pricer/pkg/pricing"
	json "github.com/goccy/go-json"
)

var (
	// ErrUnknownField is returned for a field name UpdateLineItem does not know.
	ErrUnknownField = errors.New("unknown line item field")
	// ErrInvalidFieldValue is returned when a value has the wrong type for
	// its field.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// Field names a mutable LineItem field.
type Field string

const (
	FieldName         Field = "name"
	FieldCountry      Field = "country"
	FieldSeniority    Field = "seniority"
	FieldHoursPerWeek Field = "hoursPerWeek"
	FieldWeeks        Field = "weeks"
	FieldAllocation   Field = "allocation"
)

var fieldAliases = map[string]Field{
	"name":           FieldName,
	"country":        FieldCountry,
	"seniority":      FieldSeniority,
	"hoursperweek":   FieldHoursPerWeek,
	"hours_per_week": FieldHoursPerWeek,
	"hours":          FieldHoursPerWeek,
	"weeks":          FieldWeeks,
	"allocation":     FieldAllocation,
}

// ParseField resolves a field name, accepting camelCase and snake_case.
func ParseField(name string) (Field, error) {
	f, ok := fieldAliases[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return f, nil
}

// apply sets field on item to value.
func apply(item *pricing.LineItem, field Field, value any) error {
	switch field {
	case FieldName, FieldCountry, FieldSeniority:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidFieldValue, field, value)
		}
		switch field {
		case FieldName:
			item.Name = s
		case FieldCountry:
			item.Country = s
		default:
			item.Seniority = s
		}
	case FieldHoursPerWeek, FieldWeeks, FieldAllocation:
		n, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidFieldValue, field, err)
		}
		switch field {
		case FieldHoursPerWeek:
			item.HoursPerWeek = n
		case FieldWeeks:
			item.Weeks = n
		default:
			item.Allocation = n
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int8:
		return float64(v), nil
	case int16:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint8:
		return float64(v), nil
	case uint16:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case json.Number:
		return toFloat(string(v))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return 0, fmt.Errorf("not a number: %q", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expects a number, got %T", value)
	}
}
