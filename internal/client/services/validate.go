package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/traveldiary/internal/client/client"
	"github.com/dmitrijs2005/traveldiary/internal/client/models"
)

// fieldNames maps struct fields to the names users see in errors.
var fieldNames = map[string]string{
	"CreatedAt": "created_at",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, ok := fieldNames[f.Name]; ok {
			return name
		}
		return strings.ToLower(f.Name)
	})

	// registration only fails for an empty tag or a nil func
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCreatedAt(fl.Field().String())
		return err == nil
	})

	return v
}

// validateStruct converts validator failures into *client.ValidationError.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	out := &client.ValidationError{Fields: make([]client.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, client.FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}
