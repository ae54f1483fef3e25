package importer

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed parsed.schema.json
var parsedSchema string

var parsedSchemaLoader = gojsonschema.NewStringLoader(parsedSchema)

// FieldError 是单个字段的校验失败。
type FieldError struct {
	Field   string
	Message string
}

// ValidationError 汇总 AI 输出不符合结构约定的字段。
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "parsed resume does not match schema: " + strings.Join(parts, "; ")
}

// ValidateParsedJSON 按内嵌的 JSON Schema 校验 AI 返回的文本。
func ValidateParsedJSON(doc string) error {
	result, err := gojsonschema.Validate(parsedSchemaLoader, gojsonschema.NewStringLoader(doc))
	if err != nil {
		return fmt.Errorf("validate parsed json: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, FieldError{Field: desc.Field(), Message: desc.Description()})
	}
	return verr
}
