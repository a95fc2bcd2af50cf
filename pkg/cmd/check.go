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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/interp"
)

var checkCmd = &cobra.Command{
	Use:   "check program_file sequence_id",
	Short: "Check a program against a known sequence's terms.",
	Long:  "Evaluate a program and compare it to the catalog entry for sequence_id, reporting ok, warning or error.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}

		program := loadProgram(args[0])

		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			fmt.Printf("invalid sequence id %q: %v\n", args[1], err)
			os.Exit(1)
		}

		programs := openProgramStore(cmd)
		sequences := openSequenceCatalog(cmd)

		expected, ok := sequences.Terms(id)
		if !ok {
			fmt.Printf("unknown sequence id %d\n", id)
			os.Exit(1)
		}

		in := interp.New(programs, interp.Options{})

		result, err := interp.Check(in, program, expected, sequences.RequiredFirstN(id), id)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		fmt.Println(result)

		if result == interp.ERROR {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
