// Copyright 2026 The ChromiumOS Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package expectations

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"go.chromium.org/dexcompat/internal/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile("schema.json")
	})
	return schema, schemaErr
}

// validate checks a document decoded by yaml.v2 against the embedded schema.
func validate(doc interface{}) error {
	sch, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, "failed to compile expectations schema")
	}
	norm, err := normalize(doc)
	if err != nil {
		return err
	}
	// Round-trip through JSON so that numbers reach the validator in the
	// form it expects.
	b, err := json.Marshal(norm)
	if err != nil {
		return errors.Wrap(err, "failed to encode expectations")
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return errors.Wrap(err, "failed to decode expectations")
	}
	if v == nil {
		v = map[string]interface{}{}
	}
	if err := sch.Validate(v); err != nil {
		return errors.Wrap(err, "expectations do not match schema")
	}
	return nil
}

// normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{} recursively.
func normalize(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, val := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, errors.Errorf("non-string key %v", k)
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			m[ks] = n
		}
		return m, nil
	case []interface{}:
		s := make([]interface{}, len(x))
		for i, val := range x {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			s[i] = n
		}
		return s, nil
	case string, bool, int, int64, uint64, float64, nil:
		return x, nil
	default:
		return nil, errors.Errorf("unsupported value %v of type %T", x, x)
	}
}
