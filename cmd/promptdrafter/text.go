package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/promptdrafter/pkg/domain"
	"github.com/spf13/cobra"
)

// readTexts returns args, or stdin when no args are given.
func readTexts(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return []string{string(data)}, nil
}

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "List the wildcard references of prompt texts",
	Long:  `Prints each {wildcard_name} reference once, normalized to wildcard_name, in first-occurrence order. Reads stdin when no text is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := readTexts(cmd, args)
		if err != nil {
			return err
		}
		for _, name := range domain.ExtractWildcards(texts...) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

var placeholderCmd = &cobra.Command{
	Use:   "placeholder [text]",
	Short: "Print the next free numeric placeholder for a text",
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := readTexts(cmd, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), domain.NextPlaceholder(strings.Join(texts, " ")))
		return nil
	},
}

var combineCmd = &cobra.Command{
	Use:   "combine <fragment>...",
	Short: "Join fragments with \", \" without doubled or dangling commas",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), domain.SmartJoin(args...))
	},
}

var valuesCmd = &cobra.Command{
	Use:   "values [raw-text]",
	Short: "Parse a wildcard list into its values",
	RunE: func(cmd *cobra.Command, args []string) error {
		texts, err := readTexts(cmd, args)
		if err != nil {
			return err
		}
		dynamic, _ := cmd.Flags().GetBool("dynamic")
		values := domain.ParseValueList(strings.Join(texts, "\n"))
		if dynamic {
			fmt.Fprintln(cmd.OutOrStdout(), domain.FormatDynamicPrompts(values))
			return nil
		}
		for _, v := range values {
			fmt.Fprintln(cmd.OutOrStdout(), v)
		}
		return nil
	},
}

func init() {
	valuesCmd.Flags().Bool("dynamic", false, "Print as a {a|b|c} dynamic prompt")
	rootCmd.AddCommand(extractCmd, placeholderCmd, combineCmd, valuesCmd)
}
