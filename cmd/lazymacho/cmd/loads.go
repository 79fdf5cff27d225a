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
	mcmd "github.com/blacktop/lazymacho/internal/commands/macho"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(loadsCmd)

	loadsCmd.Flags().StringP("arch", "a", "", "Which architecture to use for fat/universal MachO")
	loadsCmd.Flags().IntP("index", "i", -1, "Only decode the load command at this index")
	viper.BindPFlag("loads.arch", loadsCmd.Flags().Lookup("arch"))
	viper.BindPFlag("loads.index", loadsCmd.Flags().Lookup("index"))

	loadsCmd.MarkZshCompPositionalArgumentFile(1)
}

// loadsCmd represents the loads command
var loadsCmd = &cobra.Command{
	Use:     "loads <macho|url>",
	Aliases: []string{"l"},
	Short:   "List load commands, decoding only the ones printed",
	Example: heredoc.Doc(`
		# List every load command of the arm64 slice
		❯ lazymacho loads --arch ARM64 /bin/ls
		# Decode a single load command; the ones before it are never decoded
		❯ lazymacho loads --arch ARM/ARMV7 --index 12 ./app`),
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := &mcmd.Config{Verbose: viper.GetBool("verbose")}
		index := viper.GetInt("loads.index")

		b, closeFn, err := openBinary(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		m, err := mcmd.SelectImage(b, viper.GetString("loads.arch"))
		if err != nil {
			return err
		}

		if index < 0 {
			return mcmd.Loads(os.Stdout, m, conf)
		}
		l, err := m.Load(index)
		if err != nil {
			return errors.Wrapf(err, "failed to decode load command %d of %d", index, m.NumLoads())
		}
		mcmd.Load(os.Stdout, index, l, conf)
		return nil
	},
}
