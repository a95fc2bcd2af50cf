// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package generate

import (
	"math/rand"

	"github.com/loda-lang/loda-go/pkg/lang"
	mathutil "github.com/loda-lang/loda-go/pkg/util/math"
)

// MultiGenerator round-robins across a pool of Configs, selecting each
// draw proportionally to the originating config's Replicas weight.
type MultiGenerator struct {
	Configs    []*Config
	generators []*Generator
	rng        *rand.Rand
}

// NewMultiGenerator constructs a MultiGenerator over configs, each backed
// by its own seeded Generator.
func NewMultiGenerator(configs []*Config, seed uint64) *MultiGenerator {
	gens := make([]*Generator, len(configs))
	for i, cfg := range configs {
		gens[i] = New(*cfg, seed+uint64(i)*0x9e3779b97f4a7c15)

		if cfg.Replicas <= 0 {
			cfg.Replicas = 1
		}
	}

	return &MultiGenerator{
		Configs:    configs,
		generators: gens,
		rng:        rand.New(rand.NewSource(int64(seed))),
	}
}

// Next draws a program from a config chosen proportionally to its
// Replicas weight, returning the program and the index of the config that
// produced it (for a later OnMatch call).
func (m *MultiGenerator) Next() (lang.Program, int) {
	idx := m.selectIndex()

	return m.generators[idx].Generate(), idx
}

// TotalReplicas sums the Replicas weight across every config, for status
// reporting.
func (m *MultiGenerator) TotalReplicas() int {
	weights := make([]int, len(m.Configs))
	for i, c := range m.Configs {
		weights[i] = c.Replicas
	}

	return mathutil.Sum(weights...)
}

func (m *MultiGenerator) selectIndex() int {
	total := m.TotalReplicas()

	if total <= 0 {
		return m.rng.Intn(len(m.Configs))
	}

	r := m.rng.Intn(total)
	for i, c := range m.Configs {
		if r < c.Replicas {
			return i
		}

		r -= c.Replicas
	}

	return len(m.Configs) - 1
}

// OnMatch records a successful catalog match from the config at idx: its
// Replicas weight doubles for a fresh sequence match and increments for an
// update to one already matched.
func (m *MultiGenerator) OnMatch(idx int, fresh bool) {
	c := m.Configs[idx]

	if fresh {
		c.Replicas *= 2
	} else {
		c.Replicas++
	}
}
