package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Trivo121/side-projects/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the internship catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return fmt.Errorf("creating a logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck

		config, err := getConfig()
		if err != nil {
			return err
		}

		c, err := catalog.Load(config.Catalog, log)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("output-json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(c.Postings())
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCOMPANY\tLOCATION\tSTIPEND\tSKILLS")
		for _, p := range c.Postings() {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Title, p.Company, p.Location, p.Stipend, strings.Join(p.Skills, ", "))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().Bool("output-json", false, "print postings as JSON")
}
