package templatepack

import (
	"fmt"
	"os"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// ValidateSampleValues validates a pack's sample placeholder values against
// its variables JSON Schema file. A pack declaring variables its own samples
// don't satisfy would produce broken reports for every tenant.
func ValidateSampleValues(schemaPath string, sampleValues map[string]interface{}) error {
	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaData)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}

	result := schema.Validate(sampleValues)
	if !result.IsValid() {
		var errorMessages []string
		for field, evalErr := range result.Errors {
			errorMessages = append(errorMessages, fmt.Sprintf("%s: %s", field, evalErr.Error()))
		}
		return fmt.Errorf("sample values validation failed: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
