package api

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"resumeforge/internal/render"
	"resumeforge/internal/resume"
	"resumeforge/internal/skills"
)

var registerValidatorsOnce sync.Once

// registerValidators 向 gin 的 validator 注册领域校验标签：
// section_type、template_name、proficiency。
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("section_type", func(fl validator.FieldLevel) bool {
			_, ok := resume.ParseSectionType(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("template_name", func(fl validator.FieldLevel) bool {
			_, ok := render.LookupTheme(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("proficiency", func(fl validator.FieldLevel) bool {
			_, ok := skills.ParseProficiency(fl.Field().String())
			return ok
		})
	})
}
