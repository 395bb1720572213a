/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"scenewright/internal/domain"
	"scenewright/internal/edit"
)

// richProject builds a project through the edit operations only.
func richProject() domain.Project {
	p := domain.NewProject("Codec Test")
	p, _ = edit.AddScene(p)
	sc := p.Scenes[0]
	sl := sc.Slides[0]
	for _, t := range domain.ElementTypes {
		sl, _ = edit.AddElement(sl, t)
	}
	sl = edit.UpdateElement(sl, sl.Elements[0].ID, domain.ElementPatch{Text: domain.Ptr("Welcome aboard")})
	sl = edit.UpdateElement(sl, sl.Elements[2].ID, domain.ElementPatch{Action: domain.Ptr(domain.GoToScene(p.Scenes[1].ID))})
	sl, _ = edit.BringToFront(sl, sl.Elements[1].ID)
	sl = edit.SyncTimeline(sl)
	sc, _ = edit.ReplaceSlide(sc, sl)
	p, _ = edit.ReplaceScene(p, sc)
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := richProject()
	data, err := EncodeProject(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeProject(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip mismatch")
	}
}

func TestDecodeEnvelope(t *testing.T) {
	p := richProject()
	data, err := EncodeEnvelope(p, domain.DefaultCanvas)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Version != FormatVersion || env.CanvasSize != domain.DefaultCanvas || !reflect.DeepEqual(env.Project, p) {
		t.Fatalf("unexpected envelope %+v", env.CanvasSize)
	}
	bare, err := DecodeProject(data)
	if err != nil || bare.ID != p.ID {
		t.Fatalf("DecodeProject on envelope: %v", err)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":      `{`,
		"array":         `[]`,
		"missing id":    `{"title":"x","scenes":[]}`,
		"scenes object": `{"id":"a","title":"x","scenes":{}}`,
		"missing title": `{"id":"a","scenes":[]}`,
		"unknown type":  `{"id":"a","title":"x","scenes":[{"id":"s","slides":[{"id":"l","elements":[{"id":"e","type":"video"}]}]}]}`,
		"bad envelope":  `{"project":{"title":"x"},"version":"1.0"}`,
	}
	for name, in := range cases {
		if _, err := DecodeProject([]byte(in)); !errors.Is(err, domain.ErrFormat) {
			t.Errorf("%s: want ErrFormat, got %v", name, err)
		}
	}
}

func TestEncodedProjectConformsToSchema(t *testing.T) {
	data, err := EncodeProject(richProject())
	if err != nil {
		t.Fatal(err)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(SchemaJSON()), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !result.Valid() {
		for _, e := range result.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("document does not conform to schema")
	}
}

func TestEncodedElementsAreFlat(t *testing.T) {
	data, _ := EncodeProject(richProject())
	var raw struct {
		Scenes []struct {
			Slides []struct {
				Elements []map[string]any `json:"elements"`
			} `json:"slides"`
		} `json:"scenes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	el := raw.Scenes[0].Slides[0].Elements[0]
	if el["type"] != "text" || el["content"] != "Welcome aboard" || el["fontSize"] != 16.0 {
		t.Fatalf("unexpected text element on the wire: %v", el)
	}
}
