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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	clihander "github.com/apex/log/handlers/cli"
	"github.com/blacktop/lazymacho/internal/colors"
	"github.com/blacktop/lazymacho/internal/config"
	"github.com/blacktop/lazymacho/internal/source"
	"github.com/blacktop/lazymacho/pkg/macho"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// Verbose boolean flag for verbose logging
	Verbose bool
	// Color boolean flag for colorized output
	Color bool
	// AppVersion stores the plugin's version
	AppVersion string
	// AppBuildTime stores the plugin's build time
	AppBuildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "lazymacho",
	Short:   "Inspect Mach-O and universal binaries without reading more than you ask for",
	Version: AppVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(log.DebugLevel)
		}
		if cmd.Flags().Changed("color") || viper.IsSet("color") {
			c := viper.GetBool("color")
			colors.Init(&c)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihander.Default)

	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/lazymacho/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&Color, "color", false, "colorize output")
	rootCmd.PersistentFlags().Bool("strict", false, "fail on unknown ARM/x86 cpu subtypes")
	rootCmd.PersistentFlags().Int("concurrency", 0, "max arches parsed at once (default GOMAXPROCS)")
	rootCmd.PersistentFlags().String("proxy", "", "HTTP/HTTPS proxy for remote binaries")
	rootCmd.PersistentFlags().Bool("insecure", false, "do not verify ssl certs for remote binaries")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	viper.BindPFlag("parse.strict", rootCmd.PersistentFlags().Lookup("strict"))
	viper.BindPFlag("parse.concurrency", rootCmd.PersistentFlags().Lookup("concurrency"))
	viper.BindPFlag("remote.proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("remote.insecure", rootCmd.PersistentFlags().Lookup("insecure"))
	viper.BindEnv("color", "CLICOLOR")
	// Settings
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(filepath.Join(home, ".config", "lazymacho"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("lazymacho")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openBinary opens a local path or http(s) URL and parses it with the
// configured subtype policy and concurrency. The returned func closes both.
func openBinary(name string) (*macho.Binary, func(), error) {
	conf, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	src, err := source.Open(name, &source.RemoteConfig{
		Proxy:     conf.Remote.Proxy,
		Insecure:  conf.Remote.Insecure,
		UserAgent: conf.Remote.UserAgent,
	})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", name)
	}

	b, err := macho.Parse(src,
		macho.WithSize(src.Size),
		macho.WithStrictSubtypes(conf.Parse.Strict),
		macho.WithConcurrency(conf.Parse.Concurrency),
	)
	if err != nil {
		src.Close()
		if macho.IsNotMachO(err) {
			return nil, nil, errors.Wrapf(err, "%s is not a Mach-O file", name)
		}
		return nil, nil, errors.Wrapf(err, "failed to parse %s", name)
	}

	return b, func() { src.Close() }, nil
}
