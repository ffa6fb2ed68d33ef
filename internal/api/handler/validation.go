package handler

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cuongbtq/opsboard/internal/api/domain"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags and reports fields by
// their json name. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = errors.New("gin validator engine is not go-playground/validator")
			return
		}

		v.RegisterTagNameFunc(jsonFieldName)

		if err = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
			return domain.IsHexColor(fl.Field().String())
		}); err != nil {
			return
		}
		err = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
			return slices.Contains(domain.Locales, fl.Field().String())
		})
	})
	return err
}

func jsonFieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
