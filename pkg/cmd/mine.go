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
package cmd

import (
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/generate"
	"github.com/loda-lang/loda-go/pkg/interp"
	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/mine"
	"github.com/loda-lang/loda-go/pkg/store"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Search for programs matching sequences in the catalog.",
	Long: "Repeatedly generate programs and check them against the sequence catalog " +
		"(--sequences-file), reporting every match and, with --programs-dir, persisting those that check ok, " +
		"until interrupted or --duration elapses.",
	Run: func(cmd *cobra.Command, args []string) {
		dir := GetString(cmd, "programs-dir")

		var programs store.ProgramStore

		var fileStore *store.FileProgramStore
		if dir != "" {
			fileStore = store.NewFileProgramStore(dir)
			programs = fileStore
		} else {
			programs = store.NewMapProgramStore()
		}

		sequences := openSequenceCatalog(cmd)

		cfg := &generate.Config{
			Length:         GetInt(cmd, "length"),
			MaxConstant:    GetInt64(cmd, "max-constant"),
			MaxIndex:       GetInt64(cmd, "max-index"),
			Loops:          GetFlag(cmd, "loops"),
			IndirectAccess: GetFlag(cmd, "indirect"),
			Replicas:       1,
		}

		seed := uint64(GetInt64(cmd, "seed"))
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}

		gen := generate.NewMultiGenerator([]*generate.Config{cfg}, seed)
		in := interp.New(programs, interp.Options{})

		prefixLen := GetInt(cmd, "prefix-len")
		match := buildMatcher(sequences, prefixLen)

		sink := func(c mine.Candidate) {
			log.Infof("mine: %s(%s) a%d: %s", c.Result, sequences.Identifier(c.SequenceID), c.SequenceID, oneLine(c.Program))

			if fileStore != nil && c.Result == interp.OK {
				if err := fileStore.Put(c.SequenceID, c.Program); err != nil {
					log.Warnf("mine: writing a%d: %v", c.SequenceID, err)
				}
			}
		}

		m := mine.NewMiner(gen, in, programs, sequences, match, sink)
		m.EvalTerms = GetInt(cmd, "terms")

		if duration := GetInt64(cmd, "duration"); duration > 0 {
			m.Scheduler = mine.NewAdaptiveScheduler(duration)
			m.Progress = mine.NewProgressMonitor(duration, GetString(cmd, "progress-file"), GetString(cmd, "checkpoint-file"), uint64(GetInt64(cmd, "checkpoint-key")))
			m.Status = mine.NewStatusLine()
		}

		m.Run()
	},
}

// oneLine renders program on a single line for a log message.
func oneLine(program lang.Program) string {
	return strings.ReplaceAll(strings.TrimSpace(parser.Print(program)), "\n", "; ")
}

// idLister is satisfied by store.MapSequenceCatalog and store.FileSequenceCatalog
// (which embeds it); it's not part of the store.SequenceCatalog interface
// because pkg/store's interface stays minimal, but a Matcher needs to
// enumerate ids to build its fingerprint index.
type idLister interface {
	Ids() []uint64
}

// buildMatcher indexes sequences by the string form of their first
// prefixLen terms, giving mine.Miner a cheap way to shortlist candidate ids
// for a freshly evaluated term sequence.
func buildMatcher(sequences store.SequenceCatalog, prefixLen int) mine.Matcher {
	lister, ok := sequences.(idLister)
	if !ok {
		return func(lang.Sequence) []uint64 { return nil }
	}

	index := make(map[string][]uint64)

	for _, id := range lister.Ids() {
		terms, ok := sequences.Terms(id)
		if !ok {
			continue
		}

		key := fingerprint(terms, prefixLen)
		index[key] = append(index[key], id)
	}

	return func(terms lang.Sequence) []uint64 {
		return index[fingerprint(terms, prefixLen)]
	}
}

// fingerprint renders the first n terms of seq (n = min(prefixLen, len(seq)))
// as a comma-separated key.
func fingerprint(seq lang.Sequence, prefixLen int) string {
	n := prefixLen
	if n > len(seq) {
		n = len(seq)
	}

	var b strings.Builder

	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(seq[i].String())
	}

	return b.String()
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().Int("length", 20, "target number of operations before repair passes run")
	mineCmd.Flags().Int64("max-constant", 4, "maximum generated CONSTANT operand value")
	mineCmd.Flags().Int64("max-index", 4, "maximum generated DIRECT/INDIRECT operand index")
	mineCmd.Flags().Bool("loops", true, "allow generated programs to contain LPB/LPE")
	mineCmd.Flags().Bool("indirect", false, "allow generated programs to contain INDIRECT operands")
	mineCmd.Flags().Int64("seed", 0, "random seed (0 draws one from the current time)")
	mineCmd.Flags().Int("terms", 40, "number of leading terms to evaluate per candidate")
	mineCmd.Flags().Int("prefix-len", 6, "number of leading terms used to fingerprint a match candidate")
	mineCmd.Flags().Int64("duration", 0, "stop after this many seconds (0 runs until interrupted)")
	mineCmd.Flags().String("progress-file", "", "file to write the current progress fraction to")
	mineCmd.Flags().String("checkpoint-file", "", "file to persist a resumable elapsed-time checkpoint to")
	mineCmd.Flags().Int64("checkpoint-key", 0, "checksum key distinguishing this miner's checkpoint from others sharing the file")
}
