package form

// Field identifies one input field of the judgment form.
type Field string

const (
	FieldPrefecture          Field = "prefecture"
	FieldCity                Field = "city"
	FieldNearestStation      Field = "nearest_station"
	FieldDistanceFromStation Field = "distance_from_station"
	FieldArea                Field = "area"
	FieldAge                 Field = "age"
	FieldStructure           Field = "structure"
	FieldLayout              Field = "layout"
	FieldRent                Field = "rent"
	FieldManagementFee       Field = "management_fee"
	FieldTotalUnits          Field = "total_units"
	FieldPostalCode          Field = "postal_code"
	FieldAddress             Field = "address"
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
)

type fieldRule struct {
	key  Field
	kind fieldKind
}

// requiredFields is the declared validation order. The error map is always
// rebuilt walking this list so messages appear in a stable order.
var requiredFields = []fieldRule{
	{FieldPrefecture, kindText},
	{FieldCity, kindText},
	{FieldNearestStation, kindText},
	{FieldDistanceFromStation, kindNumber},
	{FieldArea, kindNumber},
	{FieldAge, kindNumber},
	{FieldStructure, kindNumber},
	{FieldLayout, kindNumber},
	{FieldRent, kindNumber},
}

// optionalNumberFields are validated only when non-empty and never required.
var optionalNumberFields = []Field{
	FieldManagementFee,
	FieldTotalUnits,
}

// Values holds the current as-typed string value per field.
type Values map[Field]string

// Errors maps a field to its user-facing validation message. A missing key
// means the field is currently valid.
type Errors map[Field]string

// Clone returns an independent copy of the error map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
