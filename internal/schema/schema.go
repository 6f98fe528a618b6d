// Package schema defines the restaurant dataset's columns and the header
// normalization applied to every source file before it is validated.
package schema

// Canonical field names, after normalization.
const (
	FieldName     = "name"
	FieldAddress  = "address"
	FieldCuisines = "cuisines"
	FieldLocality = "locality"
	FieldRating   = "aggregate_rating"
	FieldVotes    = "votes"
)

// FieldType represents the type a column is coerced to at load time.
type FieldType int

const (
	FieldText FieldType = iota
	FieldFloat
	FieldInteger
)

// String returns the lowercase name of the type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldFloat:
		return "float"
	case FieldInteger:
		return "integer"
	default:
		return "unknown"
	}
}

// FieldSpec describes one required column of the dataset.
type FieldSpec struct {
	Name    string    // Canonical column name
	Label   string    // Display label
	Type    FieldType // Coercion target
	Default string    // Substituted for absent or blank text cells; numeric fields default to 0
}

// RestaurantFieldSpecs defines the columns every dataset must carry, in display order.
var RestaurantFieldSpecs = []FieldSpec{
	{Name: FieldName, Label: "Name", Type: FieldText, Default: "Name N/A"},
	{Name: FieldAddress, Label: "Address", Type: FieldText, Default: "Address N/A"},
	{Name: FieldCuisines, Label: "Cuisines", Type: FieldText, Default: "Cuisine N/A"},
	{Name: FieldLocality, Label: "Locality", Type: FieldText, Default: "Location N/A"},
	{Name: FieldRating, Label: "Rating", Type: FieldFloat},
	{Name: FieldVotes, Label: "Votes", Type: FieldInteger},
}

// Required is the set of canonical fields a source must declare.
var Required = []string{FieldName, FieldCuisines, FieldLocality, FieldRating, FieldAddress, FieldVotes}

// DisplayColumns is the fixed column order of search results.
var DisplayColumns = []string{FieldName, FieldAddress, FieldCuisines, FieldLocality, FieldRating, FieldVotes}

// Spec returns the FieldSpec for a canonical name.
func Spec(name string) (FieldSpec, bool) {
	for _, spec := range RestaurantFieldSpecs {
		if spec.Name == name {
			return spec, true
		}
	}
	return FieldSpec{}, false
}
