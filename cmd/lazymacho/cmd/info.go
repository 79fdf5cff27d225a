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
	"context"
	"errors"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	mcmd "github.com/blacktop/lazymacho/internal/commands/macho"
	"github.com/caarlos0/ctrlc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.MarkZshCompPositionalArgumentFile(1)
}

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:     "info <macho|url>",
	Aliases: []string{"i"},
	Short:   "Print the header of a Mach-O, or of every arch of a universal binary",
	Example: heredoc.Doc(`
		# Print the header of a thin binary
		❯ lazymacho info /usr/lib/dyld
		# Print every arch of a universal binary, and their load commands
		❯ lazymacho info -V /bin/ls
		# Only the ranges needed are fetched from a remote binary
		❯ lazymacho info https://example.com/Payload/App.app/App`),
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, closeFn, err := openBinary(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if err := ctrlc.Default.Run(ctx, func() error {
			return mcmd.Info(ctx, os.Stdout, b, &mcmd.Config{
				Verbose: viper.GetBool("verbose"),
			})
		}); err != nil {
			if errors.As(err, &ctrlc.ErrorCtrlC{}) {
				log.Warn("Exiting...")
				cancel()
				return nil
			}
			return err
		}
		return nil
	},
}
