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
package store

import (
	"path/filepath"
	"testing"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/number"
	"github.com/loda-lang/loda-go/pkg/util/assert"
)

func Test_MapProgramStore_RoundTrip(t *testing.T) {
	s := NewMapProgramStore()

	if _, ok := s.Get(42); ok {
		t.Fatal("expected miss on empty store")
	}

	prog, _ := parser.Parse("t.asm", []byte("mov $0,1\n"))
	s.Put(42, prog)

	got, ok := s.Get(42)
	if !ok || got.Len() != 1 {
		t.Fatalf("expected stored program for id 42, got ok=%v len=%d", ok, got.Len())
	}
}

func Test_MapSequenceCatalog(t *testing.T) {
	c := NewMapSequenceCatalog()
	terms := lang.Sequence{number.FromInt64(0), number.FromInt64(1), number.FromInt64(1)}
	c.Put(45, terms, 2, "A000045")

	got, ok := c.Terms(45)
	if !ok || !got.Equal(terms) {
		t.Fatalf("Terms(45) = %v, %v; want %v, true", got, ok, terms)
	}

	assert.Equal(t, 2, c.RequiredFirstN(45), "RequiredFirstN(45)")
	assert.Equal(t, "A000045", c.Identifier(45), "Identifier(45)")

	c.Put(7, terms, 1, "A000007")

	ids := c.Ids()
	if len(ids) != 2 {
		t.Fatalf("Ids() = %v, want 2 entries", ids)
	}

	seen := map[uint64]bool{}
	for _, id := range ids {
		seen[id] = true
	}

	if !seen[45] || !seen[7] {
		t.Errorf("Ids() = %v, want to contain 45 and 7", ids)
	}
}

func Test_FileProgramStore_LoadsAndCaches(t *testing.T) {
	dir := t.TempDir()

	prog, _ := parser.Parse("t.asm", []byte("mov $0,1\nadd $0,$0\n"))
	if err := parser.WriteFile(filepath.Join(dir, "A7.asm"), prog); err != nil {
		t.Fatalf("write file: %v", err)
	}

	s := NewFileProgramStore(dir)

	got, ok := s.Get(7)
	if !ok || got.Len() != 2 {
		t.Fatalf("Get(7) = %v, %d ops; want ok len 2", ok, got.Len())
	}

	// second lookup should hit the cache rather than reparsing
	got2, ok2 := s.Get(7)
	if !ok2 || got2.Len() != 2 {
		t.Fatalf("cached Get(7) = %v, %d ops; want ok len 2", ok2, got2.Len())
	}
}

func Test_FileProgramStore_Miss(t *testing.T) {
	s := NewFileProgramStore(t.TempDir())

	if _, ok := s.Get(999); ok {
		t.Fatal("expected miss for nonexistent program file")
	}
}

func Test_FileSequenceCatalog_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sequences.json")

	src := NewMapSequenceCatalog()
	src.Put(45, lang.Sequence{number.FromInt64(0), number.FromInt64(1), number.Inf}, 2, "A000045")

	if err := SaveFileSequenceCatalog(path, src); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFileSequenceCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	terms, ok := loaded.Terms(45)
	if !ok {
		t.Fatal("expected sequence 45 to load")
	}

	if !terms[2].IsInf() {
		t.Error("expected third term to round-trip as inf")
	}

	if loaded.Identifier(45) != "A000045" {
		t.Errorf("Identifier(45) = %q, want A000045", loaded.Identifier(45))
	}
}
