package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Name", "name"},
		{"  Aggregate Rating  ", "aggregate_rating"},
		{"Restaurant ID", "restaurant_id"},
		{"Average Cost for two", "average_cost_for_two"},
		{"votes", "votes"},
		{"Rating  Color", "rating__color"},
		{"\tLocality\n", "locality"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalName(tt.in))
		})
	}
}

func TestNormalize(t *testing.T) {
	headers := []string{"Restaurant Name", " Cuisines", "Aggregate rating"}

	got := Normalize(headers)

	assert.Equal(t, map[string]string{
		"Restaurant Name":  "restaurant_name",
		" Cuisines":        "cuisines",
		"Aggregate rating": "aggregate_rating",
	}, got)
}

func TestCanonicalize_PreservesOrder(t *testing.T) {
	got := Canonicalize([]string{"Votes", "Name", "Locality Verbose"})
	assert.Equal(t, []string{"votes", "name", "locality_verbose"}, got)
}

func TestValidate_AllPresent(t *testing.T) {
	canonical := []string{"restaurant_id", "name", "address", "locality", "cuisines", "aggregate_rating", "votes"}
	assert.NoError(t, Validate(canonical, Required))
}

func TestValidate_MissingSorted(t *testing.T) {
	canonical := []string{"name", "address", "locality"}

	err := Validate(canonical, Required)
	require.Error(t, err)

	var mfe *MissingFieldsError
	require.True(t, errors.As(err, &mfe))
	assert.Equal(t, []string{"aggregate_rating", "cuisines", "votes"}, mfe.Missing)
	assert.Equal(t, canonical, mfe.Available)
	assert.Contains(t, err.Error(), "votes")
}

func TestValidate_AvailableIsACopy(t *testing.T) {
	canonical := []string{"name"}
	err := Validate(canonical, []string{"votes"})

	var mfe *MissingFieldsError
	require.True(t, errors.As(err, &mfe))
	canonical[0] = "changed"
	assert.Equal(t, []string{"name"}, mfe.Available)
}

func TestMakeHeaderIndex_FirstWins(t *testing.T) {
	idx, dups := MakeHeaderIndex([]string{"name", "votes", "name"})

	assert.Equal(t, 0, idx["name"])
	assert.Equal(t, 1, idx["votes"])
	assert.Equal(t, []string{"name"}, dups)
}

func TestHeaderIndex_Cell(t *testing.T) {
	idx, _ := MakeHeaderIndex([]string{"name", "votes"})

	assert.Equal(t, "Cafe", idx.Cell([]string{"Cafe", "12"}, "name"))
	assert.Equal(t, "", idx.Cell([]string{"Cafe"}, "votes"), "short record")
	assert.Equal(t, "", idx.Cell([]string{"Cafe", "12"}, "address"), "absent column")
}

func TestSpec(t *testing.T) {
	spec, ok := Spec(FieldVotes)
	require.True(t, ok)
	assert.Equal(t, FieldInteger, spec.Type)

	_, ok = Spec("price_range")
	assert.False(t, ok)
}

func TestDisplayColumnsCoverRequired(t *testing.T) {
	assert.ElementsMatch(t, Required, DisplayColumns)
	require.Len(t, RestaurantFieldSpecs, len(DisplayColumns))
	for i, spec := range RestaurantFieldSpecs {
		assert.Equal(t, DisplayColumns[i], spec.Name)
	}
}
