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

package detect

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nlnwa/gomarc"
	"github.com/nlnwa/gomarc/charset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type conf struct {
	fileName string
	encoding string
}

// NewCommand returns the detect command. Settings shared with the root command are read from v.
func NewCommand(v *viper.Viper) *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "detect [inputfile|-]",
		Short: "Print the format of MARC input",
		Long: `Detect inspects the beginning of the input and prints the deduced format:
ISO2709, LINE, DANMARC2_LINE, MARCXCHANGE, MARCXML or JSONL.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.fileName = "-"
			if len(args) > 0 {
				c.fileName = args[0]
			}
			c.encoding = v.GetString("input-encoding")
			return runE(cmd, c)
		},
	}

	return cmd
}

func runE(cmd *cobra.Command, c *conf) error {
	cs, err := charset.Lookup(c.encoding)
	if err != nil {
		return err
	}
	if !charset.IsUTF8(cs) {
		cs = charset.MustLookup(charset.NameLatin1)
	}

	var r io.Reader = cmd.InOrStdin()
	if c.fileName != "-" {
		f, err := os.Open(c.fileName)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	in, closer, err := gomarc.NewInput(r)
	if err != nil {
		return err
	}
	defer closer.Close()

	format, err := gomarc.DeduceFormat(in, cs)
	if errors.Is(err, gomarc.ErrNoData) {
		return errors.New("no data in input")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), format)
	return err
}
