package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common hand-editing damage in JSON documents:
// missing quotes around keys, single quotes, trailing commas, comments,
// unclosed arrays/objects and surrounding code fences.
func RepairJSON(malformedJSON string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformedJSON)
	if err != nil {
		return "", fmt.Errorf("JSON_REPAIR_FAILED: %w", err)
	}
	return repaired, nil
}

// HJSONToJSON converts Human-friendly JSON (comments, unquoted keys,
// optional commas) to standard JSON.
func HJSONToJSON(hjsonData []byte) ([]byte, error) {
	var result interface{}
	if err := hjson.Unmarshal(hjsonData, &result); err != nil {
		return nil, fmt.Errorf("HJSON_PARSE_ERROR: %w", err)
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("JSON_MARSHAL_ERROR: %w", err)
	}
	return jsonBytes, nil
}

// DecodeLenient decodes data into v, trying progressively more lenient parsers:
// 1. Standard JSON
// 2. JSON repair
// 3. Hjson
//
// Decoding always ends in encoding/json so that struct tags and pointer
// fields behave the same whichever parser accepted the input.
func DecodeLenient(data []byte, v interface{}) error {
	// Try 1: Standard JSON
	firstErr := json.Unmarshal(data, v)
	if firstErr == nil {
		return nil
	}

	// Try 2: JSON Repair
	if repaired, err := RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), v); err == nil {
			return nil
		}
	}

	// Try 3: Hjson (most lenient)
	if converted, err := HJSONToJSON(data); err == nil {
		if err := json.Unmarshal(converted, v); err == nil {
			return nil
		}
	}

	return fmt.Errorf("LENIENT_DECODE_FAILED: all parsing strategies failed: %w", firstErr)
}
