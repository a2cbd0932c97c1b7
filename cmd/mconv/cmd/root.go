/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cmd

import (
	"fmt"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/nlnwa/gomarc/cmd/mconv/cmd/detect"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	cfgFile string
	v       *viper.Viper
}

// NewCommand returns a new cobra.Command implementing the root command for mconv
func NewCommand() *cobra.Command {
	c := &conf{v: viper.New()}
	cmd := &cobra.Command{
		Use:   "mconv [inputfile|-]",
		Short: "Parses MARC records while supporting output in various formats",
		Long: `mconv reads MARC records in ISO2709, line format, DanMarc2 line format, MARCXML,
MarcXchange or JSON lines, detects the input format automatically and writes the
records in the format given by --format.

Input is read from standard input when no file name or a dash (-) is given.
Gzip and zstd compressed input is decompressed transparently.

Records that cannot be parsed are written to an error dump file and the
conversion continues with the next record.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) > 0 {
				input = args[0]
			}
			s, err := newSettings(c.v)
			if err != nil {
				return err
			}
			return convert(cmd, input, s)
		},
	}

	// Flags
	cmd.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is $HOME/.mconv.yaml)")
	cmd.PersistentFlags().String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringP("input-encoding", "i", "UTF-8", "character set of the input MARC record(s), eg. LATIN-1, DANMARC2, MARC-8, UTF-8")

	cmd.Flags().StringP("mode", "m", string(modeLax), "output mode LAX or STRICT")
	cmd.Flags().StringP("format", "f", string(formatLine), "output format LINE, LINE_CONCAT, ISO, JSONL, MARCXCHANGE or MARCXML")
	cmd.Flags().StringP("output-encoding", "o", "UTF-8", "character set of the output MARC record(s), eg. LATIN-1, DANMARC2, MARC-8, UTF-8")
	cmd.Flags().BoolP("include-leader", "l", false, "include leader in line format output (overrides mode)")
	cmd.Flags().BoolP("include-whitespace-padding", "p", false, "pad subfields with whitespace in line format output (overrides mode)")
	cmd.Flags().BoolP("as-collection", "c", false, "output all records in the same collection, requires an output format with collection support")
	cmd.Flags().String("errdump", defaultErrDump, "file receiving records that could not be parsed")
	cmd.Flags().String("output-file", "", "write output to this file instead of standard output")
	cmd.Flags().String("metrics-file", "", "write conversion metrics to this file in Prometheus text format")

	// Subcommands
	cmd.AddCommand(detect.NewCommand(c.v))

	return cmd
}

// initConfig binds flags, reads in config file and ENV variables if set.
func (c *conf) initConfig(cmd *cobra.Command) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if c.cfgFile != "" {
		// Use config file from the flag.
		c.v.SetConfigFile(c.cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			return err
		}

		// Search config in home directory with name ".mconv" (without extension).
		c.v.AddConfigPath(home)
		c.v.SetConfigName(".mconv")
	}

	c.v.SetEnvPrefix("MCONV")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := c.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && c.cfgFile != "" {
			return fmt.Errorf("cannot read config file: %w", err)
		}
	} else {
		log.Debugf("Using config file: %s", c.v.ConfigFileUsed())
	}

	level, err := log.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())
	return nil
}
