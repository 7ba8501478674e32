package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/harleysato/mailtriage/pkg/domain/types"
)

func TestCategory_Groups(t *testing.T) {
	tests := []struct {
		name     string
		category types.Category
		isWork   bool
		isOther  bool
	}{
		{
			name:     "blocking is work",
			category: types.CategoryBlocking,
			isWork:   true,
		},
		{
			name:     "informational is work",
			category: types.CategoryInformational,
			isWork:   true,
		},
		{
			name:     "marketing is other",
			category: types.CategoryMarketing,
			isOther:  true,
		},
		{
			name:     "travel is other",
			category: types.CategoryTravel,
			isOther:  true,
		},
		{
			name:     "none is neither",
			category: types.CategoryNone,
		},
		{
			name:     "out of range is neither",
			category: types.Category(12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.category.IsWork()).Equal(tt.isWork)
			gt.Value(t, tt.category.IsOther()).Equal(tt.isOther)
		})
	}
}

func TestCategory_IsValid(t *testing.T) {
	for _, c := range types.AllCategories() {
		gt.B(t, c.IsValid()).True()
	}
	gt.B(t, types.CategoryNone.IsValid()).False()
	gt.B(t, types.Category(12).IsValid()).False()
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.Category
		wantErr bool
	}{
		{
			name:  "blocking",
			input: "blocking",
			want:  types.CategoryBlocking,
		},
		{
			name:  "action required",
			input: "action_required",
			want:  types.CategoryActionRequired,
		},
		{
			name:  "travel",
			input: "travel",
			want:  types.CategoryTravel,
		},
		{
			name:    "unknown name",
			input:   "spam",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseCategory(tt.input)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestCategory_String(t *testing.T) {
	gt.Value(t, types.CategoryTimeSensitive.String()).Equal("time_sensitive")
	gt.Value(t, types.Category(99).String()).Equal("unknown")
}

func TestWorkCategories(t *testing.T) {
	work := types.WorkCategories()
	gt.Array(t, work).Length(5)
	for _, c := range work {
		gt.B(t, c.IsWork()).True()
	}
}
