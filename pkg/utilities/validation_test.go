package utilities

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (s sample) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required.Error("name is required")),
		validation.Field(&s.Age, validation.Min(18).Error("too young")),
	)
}

func TestFieldErrors(t *testing.T) {
	list, ok := FieldErrors(sample{Age: 3}.Validate())
	require.True(t, ok)
	assert.Equal(t, []FieldError{
		{Param: "age", Msg: "too young"},
		{Param: "name", Msg: "name is required"},
	}, list)
}

func TestFieldErrors_NotValidation(t *testing.T) {
	_, ok := FieldErrors(errors.New("boom"))
	assert.False(t, ok)
}
