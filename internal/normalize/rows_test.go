package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshsymonds/driveloader/internal/drive"
)

func TestCoercePrecedence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want any
	}{
		{name: "empty is nil", in: "", want: nil},
		{name: "TRUE", in: "TRUE", want: true},
		{name: "FALSE", in: "FALSE", want: false},
		{name: "lowercase true stays a string", in: "true", want: "true"},
		{name: "integer", in: "42", want: float64(42)},
		{name: "thousands separator", in: "1,234.5", want: 1234.5},
		{name: "millions", in: "1,234,567", want: float64(1234567)},
		{name: "leading point", in: ".5", want: 0.5},
		{name: "zero", in: "0", want: float64(0)},
		{name: "two decimal points stay a string", in: "1.2.3", want: "1.2.3"},
		{name: "negative stays a string", in: "-5", want: "-5"},
		{name: "currency stays a string", in: "$10", want: "$10"},
		{name: "percentage stays a string", in: "50%", want: "50%"},
		{name: "lone comma stays a string", in: ",", want: ","},
		{name: "lone point stays a string", in: ".", want: "."},
		{name: "whitespace stays a string", in: " ", want: " "},
		{name: "text", in: "hello", want: "hello"},
		{name: "date stays a string", in: "2024-01-02", want: "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Coerce(tt.in))
		})
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"First Name":    "firstName",
		"first_name":    "firstName",
		"first-name":    "firstName",
		"FIRST NAME":    "firstName",
		"firstName":     "firstName",
		"ID":            "id",
		"HTTP status":   "httpStatus",
		"HTTPServer":    "httpServer",
		"Row Count (#)": "rowCount",
		"version2":      "version2",
		"Name_2":        "name2",
		"  padded  ":    "padded",
		"don't":         "dont",
		"Prix Été":      "prixÉté",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CamelCase(in), "input %q", in)
	}
}

func TestCleanRows(t *testing.T) {
	rows := []drive.RawRow{
		{"_row": "2", "First Name": "Ada", "Score": "1,234.5", "Active": "TRUE", "Notes": ""},
		{"_row": "3", "First Name": "Grace", "Score": "7", "Active": "FALSE", "Notes": "n/a"},
	}

	got := CleanRows(rows)

	assert.Equal(t, []drive.RowObject{
		{"firstName": "Ada", "score": 1234.5, "active": true, "notes": nil},
		{"firstName": "Grace", "score": float64(7), "active": false, "notes": "n/a"},
	}, got)
}

func TestCleanRowKeyCollisions(t *testing.T) {
	row := drive.RawRow{
		"_row":       "2",
		"first_name": "Grace",
		"First Name": "Ada",
		"firstName":  "Linus",
		"Name":       "upper",
		"name":       "lower",
	}
	want := drive.RowObject{
		"firstName":   "Ada",
		"firstName_2": "Linus",
		"firstName_3": "Grace",
		"name":        "upper",
		"name_2":      "lower",
	}

	// map iteration order varies between calls; the result must not
	for i := 0; i < 50; i++ {
		assert.Equal(t, want, CleanRow(row))
	}
}

func TestCleanRowsEmpty(t *testing.T) {
	got := CleanRows(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
