/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/notargets/meshrw/fileio"
	"github.com/notargets/meshrw/mesh"
	"github.com/notargets/meshrw/mesh/readers"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info <input.msh>",
	Short: "Print the statistics of a mesh file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Info(args[0], cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
}

// Info reads filename and prints its summary to w
func Info(filename string, w io.Writer, logger zerolog.Logger) error {
	m, err := readers.ReadMeshFile(filename)
	if err != nil {
		return err
	}
	s, err := mesh.Analyze(m, logger)
	if err != nil {
		return err
	}
	size := "unknown"
	if path, err := fileio.Expand(filename); err == nil {
		if fi, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(fi.Size()))
		}
	}
	fmt.Fprintf(w, "File\t\t%s (%s)\n", filename, size)
	fmt.Fprintf(w, "Dimension\t%d\n", s.Dimension)
	fmt.Fprintf(w, "Nodes\t\t%s\n", humanize.Comma(int64(s.NumNodes)))
	fmt.Fprintf(w, "Elements\t%s\n", humanize.Comma(int64(s.NumElements)))
	types, counts := s.ElementsByType()
	for i, t := range types {
		fmt.Fprintf(w, "  %-8s\t%s\n", t, humanize.Comma(int64(counts[i])))
	}
	fmt.Fprintf(w, "Physical groups\t%d\n", len(s.PhysGroups))
	for _, p := range s.PhysGroups {
		name := s.GroupNames[p]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "  %d\t\t%s elements, %s\n", p, humanize.Comma(int64(s.ElementsPerGroup[p])), name)
	}
	fmt.Fprintf(w, "Fields\t\t%d (nodal %d, elemental %d, temporal %d)\n",
		len(s.Fields), s.NumNodalFields, s.NumElementalFields, s.NumTemporalFields)
	for _, f := range s.Fields {
		fmt.Fprintf(w, "  %-12s\t%s %s x%d, %d steps\n", f.Name, f.Kind, f.DataKind(), f.Dim, f.NumSteps())
	}
	steps := make([]string, len(s.Steps))
	for i, v := range s.Steps {
		steps[i] = humanize.Ftoa(v)
	}
	fmt.Fprintf(w, "Steps\t\t%d [%s]\n", s.NumSteps, strings.Join(steps, " "))
	return nil
}
