package main

import (
	"os"

	"github.com/aretw0/promptdrafter/internal/cli"
	"github.com/aretw0/promptdrafter/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Manage saved prompts and wildcard lists",
	Long:    `Categories are dual, single and wildcard. Records live in the configured storage backend.`,
}

// withApp opens the configured library for the duration of fn.
func withApp(cmd *cobra.Command, fn func(app *cli.App) error) error {
	app, err := cli.NewApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

var libraryListCmd = &cobra.Command{
	Use:     "ls <category>",
	Aliases: []string{"list"},
	Short:   "List saved names",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.ListRecords(cmd.Context(), cmd.OutOrStdout(), app, args[0])
		})
	},
}

var libraryShowCmd = &cobra.Command{
	Use:   "show <category> <name>",
	Short: "Show a saved record",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, _ := cmd.Flags().GetBool("json")
		frame, _ := cmd.Flags().GetBool("frame")
		return withApp(cmd, func(app *cli.App) error {
			return cli.ShowRecord(cmd.Context(), cmd.OutOrStdout(), app, args[0], args[1], cli.ShowOptions{
				JSON:   jsonOut,
				Frame:  frame,
				Render: tui.IsTerminal(os.Stdout),
			})
		})
	},
}

var librarySaveCmd = &cobra.Command{
	Use:   "save <category> <name>",
	Short: "Save a prompt or wildcard list",
	Example: `  promptdrafter library save dual portrait --positive "a {wildcard_subject}" --negative "blurry"
  promptdrafter library save single hero --prompt "a knight"
  promptdrafter library save wildcard colors --raw-text "red|green|blue"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]interface{}{"name": args[1]}
		for flag, key := range map[string]string{
			"positive": "positive",
			"negative": "negative",
			"prompt":   "prompt",
			"raw-text": "raw_text",
		} {
			if cmd.Flags().Changed(flag) {
				fields[key], _ = cmd.Flags().GetString(flag)
			}
		}
		return withApp(cmd, func(app *cli.App) error {
			return cli.SaveRecord(cmd.Context(), cmd.OutOrStdout(), app, args[0], fields)
		})
	},
}

var libraryRemoveCmd = &cobra.Command{
	Use:     "rm <category> <name>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved record",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *cli.App) error {
			return cli.DeleteRecord(cmd.Context(), cmd.OutOrStdout(), app, args[0], args[1])
		})
	},
}

func init() {
	libraryShowCmd.Flags().Bool("json", false, "Print the record as JSON")
	libraryShowCmd.Flags().Bool("frame", false, "Print each field in a coloured frame")

	librarySaveCmd.Flags().String("positive", "", "Positive prompt (dual)")
	librarySaveCmd.Flags().String("negative", "", "Negative prompt (dual)")
	librarySaveCmd.Flags().String("prompt", "", "Prompt (single)")
	librarySaveCmd.Flags().String("raw-text", "", "Values separated by newlines, | or commas (wildcard)")

	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, librarySaveCmd, libraryRemoveCmd)
	rootCmd.AddCommand(libraryCmd)
}
