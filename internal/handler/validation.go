package handler

import (
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	registerValidate sync.Once
)

// registerValidators 在 gin 的校验引擎上注册自定义规则，可重复调用。
func registerValidators() {
	registerValidate.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("slug", validateSlug)
	})
}

// validateSlug accepts empty values so optional slugs can fall back to the title.
func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || slugPattern.MatchString(value)
}
