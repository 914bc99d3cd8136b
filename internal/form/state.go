package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/na2kera/ai-rent-navi/constants"
	"github.com/na2kera/ai-rent-navi/internal/common"
	"github.com/na2kera/ai-rent-navi/internal/entity"
)

// State is the form state controller: one as-typed string per field plus the
// error map the validator keeps in sync with the latest values. A State
// serves a single caller at a time; handlers build one per request.
type State struct {
	values Values
	errors Errors
}

// NewState returns an empty form.
func NewState() *State {
	return &State{values: Values{}, errors: Errors{}}
}

// NewStateFromValues seeds a form from raw field values, e.g. the body of a
// validation request. No validation runs until Set or Submit.
func NewStateFromValues(values Values) *State {
	s := NewState()
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Restore pre-populates every field from a previously judged input, each
// value stringified for display. Used by the history restore path.
func Restore(input entity.PropertyInput) *State {
	s := NewState()
	s.values = ValuesFromInput(input)
	return s
}

// ValuesFromInput stringifies a PropertyInput back into form values.
// Absent optional fields stay absent rather than becoming "0".
func ValuesFromInput(input entity.PropertyInput) Values {
	v := Values{
		FieldPrefecture:          input.Prefecture,
		FieldCity:                input.City,
		FieldNearestStation:      input.NearestStation,
		FieldDistanceFromStation: strconv.Itoa(input.DistanceFromStation),
		FieldArea:                strconv.FormatFloat(input.Area, 'f', -1, 64),
		FieldAge:                 strconv.Itoa(input.Age),
		FieldStructure:           strconv.Itoa(input.Structure),
		FieldLayout:              strconv.Itoa(input.Layout),
		FieldRent:                strconv.Itoa(input.Rent),
	}
	if input.PostalCode != "" {
		v[FieldPostalCode] = input.PostalCode
	}
	if input.Address != "" {
		v[FieldAddress] = input.Address
	}
	if input.ManagementFee != nil {
		v[FieldManagementFee] = strconv.Itoa(*input.ManagementFee)
	}
	if input.TotalUnits != nil {
		v[FieldTotalUnits] = strconv.Itoa(*input.TotalUnits)
	}
	return v
}

// Set commits a new value for one field and revalidates scoped to that
// field. Errors for untouched fields are preserved.
func (s *State) Set(field Field, value string) {
	s.values[field] = value
	s.errors = Validate(s.values, s.errors, field)
}

// Get returns the current value of a field.
func (s *State) Get(field Field) string {
	return s.values[field]
}

// Errors returns the current error map.
func (s *State) Errors() Errors {
	return s.errors
}

// ApplyAddress commits a postal auto-fill outcome. A successful lookup
// fills prefecture and city (revalidating each); a failed one clears both
// and parks the failure message on the postal code field. Never retried.
func (s *State) ApplyAddress(prefecture, city string, lookupErr error) {
	if lookupErr != nil {
		s.Set(FieldPrefecture, "")
		s.Set(FieldCity, "")
		msg := lookupErr.Error()
		var app *common.AppError
		if errors.As(lookupErr, &app) {
			msg = app.Message
		}
		s.errors[FieldPostalCode] = msg
		return
	}
	s.Set(FieldPrefecture, prefecture)
	s.Set(FieldCity, city)
	delete(s.errors, FieldPostalCode)
}

// Reset clears all fields and the error map atomically.
func (s *State) Reset() {
	s.values = Values{}
	s.errors = Errors{}
}

// ValidateAll runs full validation and reports whether submission may
// proceed.
func (s *State) ValidateAll() bool {
	s.errors = Validate(s.values, s.errors, "")
	return len(s.errors) == 0
}

// Submit runs full validation and, when the form is clean, coerces the
// string values into a typed PropertyInput. Empty optional fields become
// absent, not zero. The city must be inside the region vocabulary for the
// selected prefecture; the returned error enumerates the valid choices.
func (s *State) Submit() (entity.PropertyInput, error) {
	if !s.ValidateAll() {
		return entity.PropertyInput{}, &ValidationFailed{Errors: s.errors.Clone()}
	}

	prefecture := s.values[FieldPrefecture]
	city := s.values[FieldCity]
	if cities := constants.CitiesFor(prefecture); cities != nil {
		if _, ok := constants.RegionKey(prefecture, city); !ok {
			return entity.PropertyInput{}, &RegionNotSupported{
				Prefecture: prefecture,
				City:       city,
				Valid:      cities,
			}
		}
	}

	station := strings.TrimSpace(s.values[FieldNearestStation])
	station = strings.TrimSuffix(station, "駅")

	input := entity.PropertyInput{
		PostalCode:          s.values[FieldPostalCode],
		Prefecture:          prefecture,
		City:                city,
		Address:             s.values[FieldAddress],
		NearestStation:      station,
		DistanceFromStation: mustInt(s.values[FieldDistanceFromStation]),
		Area:                mustFloat(s.values[FieldArea]),
		Age:                 mustInt(s.values[FieldAge]),
		Structure:           mustInt(s.values[FieldStructure]),
		Layout:              mustInt(s.values[FieldLayout]),
		Rent:                mustInt(s.values[FieldRent]),
	}
	if v := s.values[FieldManagementFee]; v != "" {
		n := mustInt(v)
		input.ManagementFee = &n
	}
	if v := s.values[FieldTotalUnits]; v != "" {
		n := mustInt(v)
		input.TotalUnits = &n
	}
	return input, nil
}

// mustFloat is only called on values that already passed validation.
func mustFloat(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

// ValidationFailed carries the full error map of a rejected submission.
type ValidationFailed struct {
	Errors Errors
}

func (e *ValidationFailed) Error() string {
	return fmt.Sprintf("form validation failed for %d field(s)", len(e.Errors))
}

// RegionNotSupported rejects a city outside the vocabulary for the selected
// prefecture.
type RegionNotSupported struct {
	Prefecture string
	City       string
	Valid      []string
}

func (e *RegionNotSupported) Error() string {
	return fmt.Sprintf("対応する地域が見つかりません: %q。入力を見直してください。利用可能な地域: %s",
		e.City, strings.Join(e.Valid, ", "))
}
