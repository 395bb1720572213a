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
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"scenewright/internal/domain"
)

// FormatVersion is written into export envelopes.
const FormatVersion = "1.0"

//go:embed schema/project.schema.json
var projectSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func projectSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(projectSchemaJSON))
	})
	return schema, schemaErr
}

// SchemaJSON returns the embedded project JSON schema.
func SchemaJSON() []byte { return projectSchemaJSON }

// Envelope is the export form of a project.
type Envelope struct {
	Project    domain.Project    `json:"project"`
	CanvasSize domain.CanvasSize `json:"canvasSize"`
	Version    string            `json:"version"`
}

// EncodeProject serializes p as an indented project document.
func EncodeProject(p domain.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return append(data, '\n'), nil
}

// EncodeEnvelope serializes p wrapped with the canvas size and format version.
func EncodeEnvelope(p domain.Project, size domain.CanvasSize) ([]byte, error) {
	data, err := json.MarshalIndent(Envelope{Project: p, CanvasSize: size, Version: FormatVersion}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeProject accepts a bare project document or an export envelope and returns the project.
func DecodeProject(data []byte) (domain.Project, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return domain.Project{}, err
	}
	return env.Project, nil
}

// DecodeEnvelope accepts either form. For a bare document, CanvasSize is zero and Version is empty.
// The project part is schema-checked before decoding; every failure wraps domain.ErrFormat.
func DecodeEnvelope(data []byte) (Envelope, error) {
	body, wrapped, err := projectBody(data)
	if err != nil {
		return Envelope{}, err
	}
	if err := CheckPayload(body); err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if wrapped {
		if err := json.Unmarshal(data, &env); err != nil {
			return Envelope{}, formatErr(err)
		}
		return env, nil
	}
	if err := json.Unmarshal(body, &env.Project); err != nil {
		return Envelope{}, formatErr(err)
	}
	return env, nil
}

// projectBody returns the bytes of the project object and whether they came from an envelope.
func projectBody(data []byte) ([]byte, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false, formatErr(err)
	}
	if _, bare := probe["scenes"]; bare {
		return data, false, nil
	}
	if inner, ok := probe["project"]; ok {
		return inner, true, nil
	}
	return data, false, nil
}

// CheckPayload validates a bare project document against the embedded schema.
func CheckPayload(data []byte) error {
	s, err := projectSchema()
	if err != nil {
		return fmt.Errorf("load project schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return formatErr(err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrFormat, strings.Join(msgs, "; "))
}

func formatErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", domain.ErrFormat, err)
}
