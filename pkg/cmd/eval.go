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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/interp"
)

var evalCmd = &cobra.Command{
	Use:   "eval program_file",
	Short: "Evaluate a LODA program and print its leading terms.",
	Long:  "Evaluate a LODA program, printing a(0), a(1), ..., a(n-1) as a comma-separated sequence.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		program := loadProgram(args[0])
		programs := openProgramStore(cmd)

		in := interp.New(programs, interp.Options{
			MaxSteps:     uint64(GetInt64(cmd, "max-steps")),
			MaxCells:     uint64(GetInt64(cmd, "max-cells")),
			MaxRecursion: GetInt(cmd, "max-recursion"),
		})

		terms := GetInt(cmd, "terms")

		if inc := interp.NewIncrementalEvaluator(in); GetFlag(cmd, "incremental") && inc.Init(program) {
			log.Debug("eval: using incremental evaluator")

			for i := 0; i < terms; i++ {
				v, _, err := inc.Next()
				if err != nil {
					fmt.Println(err)
					os.Exit(1)
				}

				if i > 0 {
					fmt.Print(",")
				}

				fmt.Print(v)
			}

			fmt.Println()

			return
		}

		seq, err := interp.Eval(in, program, terms)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		for i, v := range seq {
			if i > 0 {
				fmt.Print(",")
			}

			fmt.Print(v)
		}

		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().Int("terms", 20, "number of leading terms to compute")
	evalCmd.Flags().Bool("incremental", true, "prefer the amortized incremental evaluator when the program's shape allows it")
	evalCmd.Flags().Int64("max-steps", 0, "abort after this many executed operations (0 disables the limit)")
	evalCmd.Flags().Int64("max-cells", 0, "abort after touching this many memory cells (0 disables the limit)")
	evalCmd.Flags().Int("max-recursion", 0, "abort after this many nested SEQ calls (0 disables the limit)")
}
