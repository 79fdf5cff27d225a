/*
Copyright © 2018-2024 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	mcmd "github.com/blacktop/lazymacho/internal/commands/macho"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(archesCmd)
	archesCmd.MarkZshCompPositionalArgumentFile(1)
}

// archesCmd represents the arches command
var archesCmd = &cobra.Command{
	Use:     "arches <macho|url>",
	Aliases: []string{"a"},
	Short:   "Print the arch table of a universal binary",
	Example: heredoc.Doc(`
		# Print the offset, size and alignment of every slice
		❯ lazymacho arches /usr/lib/libSystem.B.dylib
		# Only the fat header and arch table are fetched
		❯ lazymacho arches https://example.com/universal.dylib`),
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeFn, err := openBinary(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		if !b.IsFat() {
			log.Infof("%s is a single %s image", args[0], b.File.CPU)
			return nil
		}
		mcmd.Arches(os.Stdout, b.Fat)
		return nil
	},
}
