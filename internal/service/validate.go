package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// validateInput 校验输入结构体，第一个失败字段转换为 ValidationError。
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validation(err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return validation(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return validation(fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "gte", "min":
		return validation(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	default:
		return validation(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
