package apiv1

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

const maxBodyBytes = 1 << 20

// ValidationError carries JSON schema violations of a request body.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request validation failed: %v", e.Details)
}

var (
	generateCodeSchema = mustSchema(`{
		"type": "object",
		"required": ["subscriptionId"],
		"properties": {
			"subscriptionId": {"type": "string", "minLength": 1}
		}
	}`)

	redeemCodeSchema = mustSchema(`{
		"type": "object",
		"required": ["code"],
		"properties": {
			"code": {"type": "string", "pattern": "^[0-9]{6,12}$"}
		}
	}`)

	recordValidationSchema = mustSchema(`{
		"type": "object",
		"required": ["userId", "userSubscriptionId", "subscriptionId", "placeId"],
		"properties": {
			"userId":             {"type": "string", "minLength": 1},
			"userSubscriptionId": {"type": "string", "minLength": 1},
			"subscriptionId":     {"type": "string", "minLength": 1},
			"subscriptionName":   {"type": "string"},
			"remainingVisits":    {"type": "integer", "minimum": 0},
			"placeId":            {"type": "string", "minLength": 1},
			"placeName":          {"type": "string"},
			"status":             {"enum": ["ACTIVE", "CANCELED", "EXPIRED"]},
			"startDate":          {"type": "string", "format": "date-time"},
			"endDate":            {"type": "string", "format": "date-time"}
		}
	}`)

	verifyQRSchema = mustSchema(`{
		"type": "object",
		"required": ["subscriptionId", "timestamp"],
		"properties": {
			"subscriptionId":     {"type": "string", "minLength": 1},
			"userSubscriptionId": {"type": "string"},
			"timestamp":          {"type": "integer", "minimum": 0}
		}
	}`)

	planSchema = mustSchema(`{
		"type": "object",
		"required": ["name", "price"],
		"properties": {
			"placeId":  {"type": "string"},
			"name":     {"type": "string", "minLength": 1, "maxLength": 120},
			"benefits": {"type": "string", "maxLength": 2000},
			"price":    {"type": ["string", "number"]},
			"visits":   {"type": "integer", "minimum": 0}
		}
	}`)

	checkoutSchema = mustSchema(`{
		"type": "object",
		"required": ["subscriptionId"],
		"properties": {
			"subscriptionId": {"type": "string", "minLength": 1}
		}
	}`)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// decodeValid validates the request body against schema and decodes it into dst.
func decodeValid(r *http.Request, schema *gojsonschema.Schema, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return &ValidationError{Details: []string{"unreadable body"}}
	}
	if len(body) == 0 {
		return &ValidationError{Details: []string{"empty body"}}
	}

	res, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return &ValidationError{Details: []string{"malformed JSON"}}
	}
	if !res.Valid() {
		details := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			details = append(details, e.String())
		}
		sort.Strings(details)
		return &ValidationError{Details: details}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &ValidationError{Details: []string{err.Error()}}
	}
	return nil
}
