package http

import (
	"github.com/go-playground/validator/v10"
)

// validate instancia compartida del validador de structs (los tags `validate`
// viven en los DTOs).
var validate = validator.New()

// validateStruct valida un DTO y devuelve los campos inválidos por nombre.
func validateStruct(s any) (map[string]any, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	details := make(map[string]any)
	if fieldErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return details, err
}
