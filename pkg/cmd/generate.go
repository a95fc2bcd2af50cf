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
	"time"

	"github.com/spf13/cobra"

	"github.com/loda-lang/loda-go/pkg/generate"
	"github.com/loda-lang/loda-go/pkg/lang/parser"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate randomized LODA programs.",
	Long:  "Draw randomized programs from a Config and print them, separated by a blank line.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := generate.Config{
			Length:         GetInt(cmd, "length"),
			MaxConstant:    GetInt64(cmd, "max-constant"),
			MaxIndex:       GetInt64(cmd, "max-index"),
			Loops:          GetFlag(cmd, "loops"),
			IndirectAccess: GetFlag(cmd, "indirect"),
		}

		seed := uint64(GetInt64(cmd, "seed"))
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}

		g := generate.New(cfg, seed)

		count := GetInt(cmd, "count")
		for i := 0; i < count; i++ {
			if i > 0 {
				fmt.Println()
			}

			fmt.Print(parser.Print(g.Generate()))
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Int("count", 1, "number of programs to generate")
	generateCmd.Flags().Int("length", 20, "target number of operations before repair passes run")
	generateCmd.Flags().Int64("max-constant", 4, "maximum generated CONSTANT operand value")
	generateCmd.Flags().Int64("max-index", 4, "maximum generated DIRECT/INDIRECT operand index")
	generateCmd.Flags().Bool("loops", true, "allow generated programs to contain LPB/LPE")
	generateCmd.Flags().Bool("indirect", false, "allow generated programs to contain INDIRECT operands")
	generateCmd.Flags().Int64("seed", 0, "random seed (0 draws one from the current time)")
}
