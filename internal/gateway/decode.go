package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	"github.com/xeipuuv/gojsonschema"
)

var schemeBatchLoader = gojsonschema.NewGoLoader(validationSchema())

// DecodeSchemes turns the raw model answer into a validated batch.
// Any malformed record rejects the whole batch.
func DecodeSchemes(raw string) ([]domain.Scheme, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &domain.ErrMalformedResponse{Reason: "empty response"}
	}

	result, err := gojsonschema.Validate(schemeBatchLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		// not JSON at all
		return nil, &domain.ErrMalformedResponse{Reason: "invalid json", Err: err}
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, &domain.ErrMalformedResponse{Reason: fmt.Sprintf("schema violation: %v", errs)}
	}

	var schemes []domain.Scheme
	if err := json.Unmarshal([]byte(raw), &schemes); err != nil {
		return nil, &domain.ErrMalformedResponse{Reason: "decode", Err: err}
	}
	if err := domain.ValidateBatch(schemes); err != nil {
		return nil, &domain.ErrMalformedResponse{Reason: "invalid scheme", Err: err}
	}
	if schemes == nil {
		schemes = []domain.Scheme{}
	}
	return schemes, nil
}
