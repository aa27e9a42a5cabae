/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	_ "embed"
	"fmt"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/design.schema.json
var designSchemaJSON []byte

var designSchemaLoader = gojsonschema.NewBytesLoader(designSchemaJSON)

// ValidateDocument checks a marshaled design.json payload against the
// published design schema, returning a single error summarizing every
// violation found.
func ValidateDocument(data []byte) error {
	result, err := gojsonschema.Validate(designSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var msgs []string
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("design document failed schema validation: %s", strings.Join(msgs, "; "))
}
