package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Username string  `json:"username" validate:"required,min=3,max=32"`
	Email    string  `json:"email" validate:"required,email"`
	Rating   int     `json:"rating" validate:"gte=0,lte=5"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=4"`
}

func TestStruct_Table(t *testing.T) {
	t.Parallel()

	long := "too long"

	tests := []struct {
		name       string
		in         sample
		wantFields []string
	}{
		{name: "valid", in: sample{Username: "alice", Email: "a@b.co", Rating: 3}},
		{name: "missing_username", in: sample{Email: "a@b.co"}, wantFields: []string{"username"}},
		{name: "bad_email_and_rating", in: sample{Username: "alice", Email: "nope", Rating: 6}, wantFields: []string{"email", "rating"}},
		{name: "optional_pointer", in: sample{Username: "alice", Email: "a@b.co", Note: &long}, wantFields: []string{"note"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Struct(tt.in)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.True(t, errors.As(err, &verr))

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
				assert.NotEmpty(t, f.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, got)
		})
	}
}

func TestField(t *testing.T) {
	t.Parallel()

	err := Field("amount", "must be positive")
	assert.Equal(t, "validation failed: amount: must be positive", err.Error())
}
