package utilities

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FieldError is one entry of a 422 response body.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// FieldErrors flattens ozzo validation errors into a list sorted by field.
// ok is false when err is not a validation.Errors (e.g. an internal rule error).
func FieldErrors(err error) (list []FieldError, ok bool) {
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	list = make([]FieldError, 0, len(verrs))
	for field, fe := range verrs {
		if fe == nil {
			continue
		}
		list = append(list, FieldError{Param: field, Msg: fe.Error()})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Param < list[j].Param })
	return list, true
}
