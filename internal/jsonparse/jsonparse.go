// Package jsonparse decodes JSON embedded in model output. Models wrap JSON in
// markdown fences, prepend chatter and return numbers as strings; every helper
// here tolerates that and reports failure by returning an empty result.
package jsonparse

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/ensa-hoceima/hr-assistant/internal/logger"
)

const previewLength = 200

var errNoJSON = errors.New("no json value found")

type options struct {
	schema    gojsonschema.JSONLoader
	logger    *zap.Logger
	onFailure func(error)
}

type Option func(*options)

// WithSchema validates the decoded value against a JSON schema document before
// it is converted to the target type.
func WithSchema(schema string) Option {
	return func(o *options) {
		if strings.TrimSpace(schema) != "" {
			o.schema = gojsonschema.NewStringLoader(schema)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// OnFailure registers a callback invoked once per failed parse.
func OnFailure(fn func(error)) Option {
	return func(o *options) { o.onFailure = fn }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = logger.OrNop(o.logger)
	return o
}

func (o *options) fail(raw string, err error) {
	o.logger.Warn("could not parse ai json", append(logger.TextPreview("raw", raw, previewLength), zap.Error(err))...)
	if o.onFailure != nil {
		o.onFailure(err)
	}
}

// StripFences removes a surrounding markdown code fence and stray backticks.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// Extract returns the text between the first open and the last close
// delimiter, inclusive.
func Extract(raw string, open, close byte) (string, bool) {
	start := strings.IndexByte(raw, open)
	end := strings.LastIndexByte(raw, close)
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// Value decodes the JSON value in raw. It tries the whole text first, then the
// outermost span delimited by prefer, then the other kind of container.
func Value(raw string, prefer byte) (any, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil, errNoJSON
	}

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err == nil {
		return value, nil
	}

	delimiters := [][2]byte{{'[', ']'}, {'{', '}'}}
	if prefer == '{' {
		delimiters[0], delimiters[1] = delimiters[1], delimiters[0]
	}
	for _, d := range delimiters {
		span, ok := Extract(cleaned, d[0], d[1])
		if !ok {
			continue
		}
		if err := json.Unmarshal([]byte(span), &value); err == nil {
			return value, nil
		}
	}
	return nil, errNoJSON
}

// List decodes a JSON array of T from raw. A lone object, or an object whose
// only array member is a list of objects, is accepted too. Items that cannot be
// converted to T are skipped. Any other failure yields an empty slice.
func List[T any](raw string, opts ...Option) []T {
	o := buildOptions(opts)

	value, err := Value(raw, '[')
	if err != nil {
		o.fail(raw, err)
		return []T{}
	}

	items, ok := asList(value)
	if !ok {
		o.fail(raw, fmt.Errorf("expected a json list, got %T", value))
		return []T{}
	}

	if err := validate(o.schema, items); err != nil {
		o.fail(raw, err)
		return []T{}
	}

	out := make([]T, 0, len(items))
	for i, item := range items {
		var decoded T
		if err := decode(item, &decoded); err != nil {
			o.logger.Warn("skipping malformed ai list item", zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, decoded)
	}
	return out
}

// Object decodes a JSON object into T. The boolean is false, and T is its zero
// value, when nothing usable was found.
func Object[T any](raw string, opts ...Option) (T, bool) {
	o := buildOptions(opts)
	var zero T

	value, err := Value(raw, '{')
	if err != nil {
		o.fail(raw, err)
		return zero, false
	}

	if list, ok := value.([]any); ok && len(list) > 0 {
		value = list[0]
	}
	if _, ok := value.(map[string]any); !ok {
		o.fail(raw, fmt.Errorf("expected a json object, got %T", value))
		return zero, false
	}

	if err := validate(o.schema, value); err != nil {
		o.fail(raw, err)
		return zero, false
	}

	var decoded T
	if err := decode(value, &decoded); err != nil {
		o.fail(raw, err)
		return zero, false
	}
	return decoded, true
}

func asList(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case map[string]any:
		var nested []any
		for _, member := range v {
			if list, ok := member.([]any); ok {
				if nested != nil {
					return []any{v}, true
				}
				nested = list
			}
		}
		if nested != nil && allObjects(nested) {
			return nested, true
		}
		return []any{v}, true
	default:
		return nil, false
	}
}

func allObjects(items []any) bool {
	for _, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func validate(schema gojsonschema.JSONLoader, value any) error {
	if schema == nil {
		return nil
	}
	result, err := gojsonschema.Validate(schema, gojsonschema.NewGoLoader(value))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       boolHook,
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// boolHook accepts yes/no answers for boolean fields.
func boolHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Bool || from.Kind() != reflect.String {
		return data, nil
	}
	return CoerceBool(data), nil
}

// CoerceBool interprets loosely typed truthy values.
func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "1"
	case float64:
		return val != 0
	default:
		return false
	}
}
