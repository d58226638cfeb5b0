package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaValidationError is returned by CompleteStructured when the model's
// response decodes as JSON but fails schema validation. The pipeline's
// Round Runner treats this the same as a transport error for retry purposes.
type SchemaValidationError struct {
	Errors []string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("response failed schema validation: %s", strings.Join(e.Errors, "; "))
}

// CompleteStructured calls the provider with JSON mode enabled, decodes the
// response into the decoded-JSON tree, and validates it against req.Schema
// before returning it. Schema validation happens on the decoded tree,
// independent of transport — the same validation runs whether the provider
// returned the JSON inline or wrapped in a tool call.
func CompleteStructured(ctx context.Context, p Provider, req CompletionRequest) (map[string]any, *CompletionResponse, error) {
	req.JSONMode = true

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(resp.Content), &decoded); err != nil {
		return nil, resp, fmt.Errorf("decoding structured response: %w", err)
	}

	if req.Schema != nil {
		schemaLoader := gojsonschema.NewGoLoader(req.Schema)
		docLoader := gojsonschema.NewGoLoader(decoded)

		result, err := gojsonschema.Validate(schemaLoader, docLoader)
		if err != nil {
			return nil, resp, fmt.Errorf("running schema validation: %w", err)
		}
		if !result.Valid() {
			errs := make([]string, 0, len(result.Errors()))
			for _, e := range result.Errors() {
				errs = append(errs, e.String())
			}
			return decoded, resp, &SchemaValidationError{Errors: errs}
		}
	}

	return decoded, resp, nil
}
