package web

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/usercount/internal/core"
)

// analyzeRequest is the body of POST /api/analyze. Files not listed keep
// their stored settings; a missing common filter switches it off.
type analyzeRequest struct {
	Files  []fileSettingsRequest `json:"files" validate:"max=100,dive"`
	Common *commonFilterRequest  `json:"common"`
}

type fileSettingsRequest struct {
	ID           string   `json:"id" validate:"required,uuid"`
	AllDates     *bool    `json:"allDates"`
	Dates        []string `json:"dates" validate:"max=1000,dive,required,max=64"`
	Locations    []string `json:"locations" validate:"max=1000,dive,required,max=256"`
	SSIDs        []string `json:"ssids" validate:"max=1000,dive,required,max=256"`
	LocationType string   `json:"locationType" validate:"max=256"`
}

type commonFilterRequest struct {
	Locations []string `json:"locations" validate:"max=1000,dive,required,max=256"`
	SSIDs     []string `json:"ssids" validate:"max=1000,dive,required,max=256"`
}

// settings converts the request into stored settings; AllDates defaults to true.
func (f fileSettingsRequest) settings() core.FileSettings {
	all := true
	if f.AllDates != nil {
		all = *f.AllDates
	}
	return core.FileSettings{
		AllDates:     all,
		Dates:        f.Dates,
		Locations:    f.Locations,
		SSIDs:        f.SSIDs,
		LocationType: f.LocationType,
	}
}

func (c *commonFilterRequest) filter() *core.CommonFilter {
	if c == nil {
		return nil
	}
	return &core.CommonFilter{Locations: c.Locations, SSIDs: c.SSIDs}
}

// validateRequest checks v against its validate tags and describes every
// failing field in one errInvalidSelection.
func (s *Server) validateRequest(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errInvalidSelection, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", errInvalidSelection, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "uuid":
		return field + " must be a file id"
	case "max":
		return fmt.Sprintf("%s exceeds maximum of %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
