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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/lang"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
	"github.com/loda-lang/loda-go/pkg/mutate"
	"github.com/loda-lang/loda-go/pkg/util/collection/stack"
)

var mutateCmd = &cobra.Command{
	Use:   "mutate program_file",
	Short: "Derive mutated variants of a program.",
	Long: "Derive variants of program_file via random edits (--mode random, the default), " +
		"constant perturbation (--mode constants) or a mix of both (--mode copies).",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		program := loadProgram(args[0])

		seed := uint64(GetInt64(cmd, "seed"))
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}

		m := mutate.New(GetFloat64(cmd, "rate"), nil, seed)

		count := GetInt(cmd, "count")
		out := stack.NewStack[lang.Program]()

		switch GetString(cmd, "mode") {
		case "constants":
			m.MutateConstants(program, count, out)
		case "copies":
			m.MutateCopies(program, count, out)
		default:
			for i := 0; i < count; i++ {
				p := program.Clone()
				m.MutateRandom(&p)
				out.Push(p)
			}
		}

		first := true

		for out.Len() > 0 {
			if !first {
				fmt.Println()
			}

			first = false
			fmt.Print(parser.Print(out.Pop()))
		}
	},
}

func init() {
	rootCmd.AddCommand(mutateCmd)
	mutateCmd.Flags().String("mode", "random", "mutation mode: random, constants or copies")
	mutateCmd.Flags().Int("count", 10, "number of variants to produce")
	mutateCmd.Flags().Float64("rate", 0.3, "fraction of a program's operations targeted per random mutation")
	mutateCmd.Flags().Int64("seed", 0, "random seed (0 draws one from the current time)")
}
