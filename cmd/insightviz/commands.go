// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/appinsight/insightviz/internal/analytics"
	"github.com/appinsight/insightviz/internal/tool"
	"github.com/appinsight/insightviz/internal/validate"
)

func newClassifyCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "classify <file|->",
		Short: "Print the schema tag of an analytics document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			conv, err := analytics.LookupConvention(a.cfg.Convention)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), conv.Classify(doc))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format: json or yaml (default: by extension, then content)")
	return cmd
}

// visualizeOutput is the document printed by the visualize command.
type visualizeOutput struct {
	Tag         analytics.Tag `json:"tag"`
	Convention  string        `json:"convention"`
	Extractor   string        `json:"extractor,omitempty"`
	PassThrough bool          `json:"passThrough"`
	View        any           `json:"view"`
}

func newVisualizeCmd(a *app) *cobra.Command {
	var (
		format string
		verify bool
	)
	cmd := &cobra.Command{
		Use:   "visualize <file|->",
		Short: "Classify a document and print its chart-ready view model as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			d, err := a.dispatcher()
			if err != nil {
				return err
			}
			res, err := d.Dispatch(doc)
			if err != nil {
				return err
			}
			if (verify || a.cfg.VerifyOutput) && !res.PassThrough && !res.Empty() {
				if err := validate.Contract(res.Tag, res.View); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), visualizeOutput{
				Tag:         res.Tag,
				Convention:  res.Convention,
				Extractor:   res.Extractor,
				PassThrough: res.PassThrough,
				View:        res.View,
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format: json or yaml (default: by extension, then content)")
	cmd.Flags().BoolVar(&verify, "verify", false, "check the view model against its output contract")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Strictly validate a document against the structure of its detected schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(cmd, args[0], format)
			if err != nil {
				return err
			}
			conv, err := analytics.LookupConvention(a.cfg.Convention)
			if err != nil {
				return err
			}
			tag := conv.Classify(doc)
			if tag == analytics.TagUnknown {
				return fmt.Errorf("document matches no %s schema", conv.Name)
			}
			structure, err := validate.NewStructure()
			if err != nil {
				return err
			}
			if err := structure.Validate(conv.Name, tag, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", tag)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "input format: json or yaml (default: by extension, then content)")
	return cmd
}

func newSchemasCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List marker-key rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			convs := analytics.Conventions()
			if !all {
				conv, err := analytics.LookupConvention(a.cfg.Convention)
				if err != nil {
					return err
				}
				convs = []analytics.Convention{conv}
			}
			out := cmd.OutOrStdout()
			for _, c := range tool.DescribeConventions(convs) {
				fmt.Fprintf(out, "%s\n", c.Name)
				for _, r := range c.Rules {
					fmt.Fprintf(out, "  %d. %-20s %s\n", r.Order, r.Tag, r.Markers)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every convention")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := yaml.Marshal(a.cfg)
			if err != nil {
				return fmt.Errorf("failed to render config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
