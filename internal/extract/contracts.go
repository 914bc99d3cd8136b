package extract

import (
	"context"
	"strconv"

	"github.com/na2kera/ai-rent-navi/internal/form"
)

// PropertyFields is the normalized shape we want back from the model.
// Every field is optional; absent means the image did not show it or the
// value failed sanitization.
type PropertyFields struct {
	PostalCode          *string  `json:"postal_code,omitempty"`
	Prefecture          *string  `json:"prefecture,omitempty"`
	City                *string  `json:"city,omitempty"`
	Address             *string  `json:"address,omitempty"`
	NearestStation      *string  `json:"nearest_station,omitempty"`
	DistanceFromStation *int     `json:"distance_from_station,omitempty"`
	Area                *float64 `json:"area,omitempty"`
	Age                 *int     `json:"age,omitempty"`
	Structure           *int     `json:"structure,omitempty"`
	Layout              *int     `json:"layout,omitempty"`
	Rent                *int     `json:"rent,omitempty"`
	ManagementFee       *int     `json:"management_fee,omitempty"`
	TotalUnits          *int     `json:"total_units,omitempty"`
}

// ExtractRequest carries one listing image.
type ExtractRequest struct {
	ImageData []byte
	MIMEType  string
}

// FieldExtractor is the interface the HTTP layer depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (PropertyFields, []byte /*rawJSON*/, error)
}

// FormValues maps the extracted fields onto form values for auto-fill.
// Absent fields stay absent so they never overwrite what the user typed.
// Area may carry a decimal (sanitize permits one); the form validator only
// accepts integer strings, so such a value surfaces as a field error the
// user resolves before submitting rather than being silently rounded here.
func (f PropertyFields) FormValues() form.Values {
	v := form.Values{}
	setStr := func(key form.Field, p *string) {
		if p != nil && *p != "" {
			v[key] = *p
		}
	}
	setInt := func(key form.Field, p *int) {
		if p != nil {
			v[key] = strconv.Itoa(*p)
		}
	}
	setStr(form.FieldPostalCode, f.PostalCode)
	setStr(form.FieldPrefecture, f.Prefecture)
	setStr(form.FieldCity, f.City)
	setStr(form.FieldAddress, f.Address)
	setStr(form.FieldNearestStation, f.NearestStation)
	setInt(form.FieldDistanceFromStation, f.DistanceFromStation)
	if f.Area != nil {
		v[form.FieldArea] = strconv.FormatFloat(*f.Area, 'f', -1, 64)
	}
	setInt(form.FieldAge, f.Age)
	setInt(form.FieldStructure, f.Structure)
	setInt(form.FieldLayout, f.Layout)
	setInt(form.FieldRent, f.Rent)
	setInt(form.FieldManagementFee, f.ManagementFee)
	setInt(form.FieldTotalUnits, f.TotalUnits)
	return v
}
