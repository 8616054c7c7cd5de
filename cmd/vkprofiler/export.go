package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vkprofiler/pkg/export"
	"vkprofiler/pkg/ui"
	"vkprofiler/pkg/vk"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <screen-name>",
	Short: "Export the latest wall posts of a user or community to CSV",
	Long: `Fetch the first page of wall posts for a screen name and write them to a
CSV file with the columns body and url. url holds the largest size of the
first attached photo, or "pass" when the post has none.`,
	Example: `  vkprofiler export durov
  vkprofiler export apiclub -o apiclub.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default <screen-name>.csv)")
	exportCmd.Flags().StringVar(&accessToken, "access-token", "", "VK access token (overrides stored tokens)")
	exportCmd.Flags().StringVar(&tokenName, "token-name", "", "use a specific stored token")
}

func runExport(cmd *cobra.Command, args []string) error {
	domain := vk.SanitizeScreenName(args[0])
	if !vk.IsValidScreenName(domain) {
		return fmt.Errorf("invalid screen name: %q", args[0])
	}

	path := exportOutput
	if path == "" {
		path = domain + ".csv"
	}

	flags := make(map[string]interface{})
	if accessToken != "" {
		flags["access-token"] = accessToken
	}
	s, err := newSession(flags, tokenName)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	rows, err := export.New(s.client, s.log).Export(ctx, domain, path)
	if err != nil {
		return err
	}

	if !quiet {
		ui.PrintSuccess(fmt.Sprintf("Exported %d posts to %s", rows, path))
	}
	return nil
}
