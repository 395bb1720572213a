/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package navgraph

import (
	"fmt"
	"sort"
	"strings"

	"scenewright/internal/domain"
)

// DOT renders the project's scenes and connections as a Graphviz digraph. The current scene is drawn bold.
// Parallel connections between the same scenes share one edge with a combined label.
func DOT(p domain.Project, conns []Connection) string {
	var sb strings.Builder

	sb.WriteString("digraph Scenes {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	if p.Title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(p.Title)))
	}
	sb.WriteString("\n")

	for _, sc := range p.Scenes {
		label := fmt.Sprintf("%s\\n%d slide(s)", escapeDOT(sc.Title), len(sc.Slides))
		attrs := fmt.Sprintf("label=\"%s\"", label)
		if sc.ID == p.CurrentSceneID {
			attrs += ", penwidth=2"
		}
		sb.WriteString(fmt.Sprintf("    \"%s\" [%s];\n", escapeDOT(sc.ID), attrs))
	}
	sb.WriteString("\n")

	edges := make(map[[2]string][]string)
	for _, c := range conns {
		key := [2]string{c.FromSceneID, c.ToSceneID}
		edges[key] = append(edges[key], c.Label)
	}
	keys := make([][2]string, 0, len(edges))
	for k := range edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(k[0]), escapeDOT(k[1]), escapeDOT(strings.Join(edges[k], ", "))))
	}

	sb.WriteString("}\n")
	return sb.String()
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
