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
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshrw/InputParameters"
	"github.com/notargets/meshrw/mesh/readers"
	"github.com/notargets/meshrw/mesh/writers"
)

// ConvertCmd represents the convert command
var ConvertCmd = &cobra.Command{
	Use:   "convert <input.msh> <output.msh|output.vtk>",
	Short: "Read a mesh file and write it in the format given by the output extension",
	Long: `Read a Gmsh MSH 2.2 file (optionally .gz or .bz2) and write it as MSH or legacy VTK.
Write options come from an optional YAML job file, flags override it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		wp := &InputParameters.WriteParameters{}
		jobFile, _ := cmd.Flags().GetString("job")
		if jobFile != "" {
			data, err := os.ReadFile(jobFile)
			if err != nil {
				return fmt.Errorf("read job file: %w", err)
			}
			if err = wp.Parse(data); err != nil {
				return fmt.Errorf("parse job file %s: %w", jobFile, err)
			}
		}
		flags := cmd.Flags()
		if flags.Changed("title") {
			wp.Title, _ = flags.GetString("title")
		}
		if flags.Changed("append") {
			wp.Append, _ = flags.GetBool("append")
		}
		if flags.Changed("safe") {
			wp.SafeMode, _ = flags.GetBool("safe")
		}
		if flags.Changed("compress") {
			wp.Compress, _ = flags.GetString("compress")
		}
		if flags.Changed("physical-names") {
			wp.PhysicalNames, _ = flags.GetBool("physical-names")
		}
		if wp.Precision == 0 {
			wp.Precision = viper.GetInt("precision")
		}
		return Convert(args[0], args[1], wp, logger)
	},
}

func init() {
	rootCmd.AddCommand(ConvertCmd)
	ConvertCmd.Flags().StringP("job", "j", "", "YAML job file with write parameters")
	ConvertCmd.Flags().StringP("title", "t", "", "VTK title line")
	ConvertCmd.Flags().BoolP("append", "a", false, "append field data to an existing output")
	ConvertCmd.Flags().BoolP("safe", "s", false, "never overwrite an existing output")
	ConvertCmd.Flags().StringP("compress", "z", "", "compress the output: gzip or bzip2")
	ConvertCmd.Flags().Bool("physical-names", false, "write $PhysicalNames in MSH output")
}

// Convert reads input and writes it to output with the given parameters
func Convert(input, output string, wp *InputParameters.WriteParameters, logger zerolog.Logger) error {
	m, err := readers.ReadMeshFile(input)
	if err != nil {
		return err
	}
	if err = wp.SelectFields(m); err != nil {
		return err
	}
	opts, err := wp.Options()
	if err != nil {
		return err
	}
	opts = append(opts, writers.WithLogger(logger))
	logger.Info().Str("input", input).Str("output", output).Int("nodes", m.NumNodes()).
		Int("elements", m.NumElements()).Int("fields", len(m.Fields)).Msg("convert")
	return writers.WriteFile(output, m, opts...)
}
