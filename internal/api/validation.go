package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
)

const maxBodyBytes = 1 << 20

const categoryInputSchema = `{
  "type": "object",
  "properties": {
    "name": { "type": "string" }
  },
  "required": ["name"]
}`

var categorySchema = mustCompileSchema("category_input.json", categoryInputSchema)

func mustCompileSchema(name, schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("compile schema %s: %v", name, err))
	}
	return compiled
}

// decodeCategoryInput reads and validates a category body. The name must not
// be blank; it is returned exactly as submitted.
func decodeCategoryInput(w http.ResponseWriter, r *http.Request) (domain.CategoryInput, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.CategoryInput{}, domain.NewValidationError("Request body is too large")
		}
		return domain.CategoryInput{}, domain.NewValidationError("Request body could not be read")
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return domain.CategoryInput{}, domain.NewValidationError("Category name is required")
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.CategoryInput{}, domain.NewValidationError("Request body must be valid JSON")
	}
	if err := categorySchema.Validate(doc); err != nil {
		obj, isObject := doc.(map[string]interface{})
		if _, hasName := obj["name"]; isObject && !hasName {
			return domain.CategoryInput{}, domain.NewValidationError("Category name is required")
		}
		return domain.CategoryInput{}, domain.NewValidationError("Category name must be a string")
	}

	name := doc.(map[string]interface{})["name"].(string)
	if strings.TrimSpace(name) == "" {
		return domain.CategoryInput{}, domain.NewValidationError("Category name is required")
	}
	return domain.CategoryInput{Name: name}, nil
}
