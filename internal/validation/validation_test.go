package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string  `json:"name" validate:"required,max=10"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Priority *int    `json:"priority" validate:"omitnil,min=1,max=5"`
	Title    *string `json:"title" validate:"omitnil,min=1"`
}

func TestStruct(t *testing.T) {
	six := 6
	empty := ""

	tests := []struct {
		name string
		in   sample
		want Errors
	}{
		{name: "valid", in: sample{Name: "ok"}},
		{
			name: "missing name",
			in:   sample{},
			want: Errors{"name": "The name field is required."},
		},
		{
			name: "too long",
			in:   sample{Name: strings.Repeat("a", 11)},
			want: Errors{"name": "The name field must not be greater than 10 characters."},
		},
		{
			name: "numeric bound",
			in:   sample{Name: "ok", Priority: &six},
			want: Errors{"priority": "The priority field must not be greater than 5."},
		},
		{
			name: "empty present string",
			in:   sample{Name: "ok", Title: &empty},
			want: Errors{"title": "The title field is required."},
		},
		{
			name: "bad email",
			in:   sample{Name: "ok", Email: "nope"},
			want: Errors{"email": "The email field must be a valid email address."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			verrs, ok := As(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, verrs)
		})
	}
}

func TestStruct_NotAStruct(t *testing.T) {
	err := Struct(42)
	require.Error(t, err)
	_, ok := As(err)
	assert.False(t, ok)
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())

	errs.Add("b", "second")
	errs.Add("a", "first")
	errs.Add("a", "ignored")
	errs.Merge(Errors{"a": "also ignored", "c": "third"})

	assert.Equal(t, "first", errs["a"])
	assert.Equal(t, "validation failed: a: first; b: second; c: third", errs.Error())

	wrapped := fmt.Errorf("create: %w", errs.Err())
	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Len(t, got, 3)
}
