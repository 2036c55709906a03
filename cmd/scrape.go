package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var scrapeURL string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape a single URL and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		pipeline := newPipeline(cfg)
		result, err := pipeline.Run(cmd.Context(), scrapeURL)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal result")
		}
		fmt.Println(string(out))

		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "URL to scrape (required)")
	_ = scrapeCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(scrapeCmd)
}
