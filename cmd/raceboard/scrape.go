package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/raceboard"
	"github.com/jpalmerr/raceboard/config"
)

// overallScrapeTimeout bounds the whole one-shot run, including retries.
const overallScrapeTimeout = 60 * time.Second

// scrapeCmd runs the pipeline once and prints the result.
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run one scrape and print the result",
	Long: `Run the fetch/extract/normalize pipeline once, without serving HTTP.

By default the copy-all text is printed to stdout, ready to paste into a
chat message. With --json the full snapshot document is printed instead.
With --out, data.json and race.txt are written into the given directory
for static hosting.

Example:
  raceboard scrape -c config.yaml
  raceboard scrape -c config.yaml --json
  raceboard scrape -c config.yaml --out public/`,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	scrapeCmd.Flags().Bool("json", false, "print the full JSON document instead of the copy text")
	scrapeCmd.Flags().StringP("out", "o", "", "directory to write data.json and race.txt into")
	_ = scrapeCmd.MarkFlagRequired("config")
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	loadDotEnv()

	configFile, _ := cmd.Flags().GetString("config")
	asJSON, _ := cmd.Flags().GetBool("json")
	outDir, _ := cmd.Flags().GetString("out")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	board, err := raceboard.New(buildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create board: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), overallScrapeTimeout)
	defer cancel()

	doc, copyText, err := board.ScrapeOnce(ctx)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := writeOutputs(outDir, doc, copyText); err != nil {
			return err
		}
		logger.Info("outputs written", "dir", outDir)
		return nil
	}

	if asJSON {
		fmt.Println(string(doc))
	} else {
		fmt.Println(copyText)
	}
	return nil
}

// writeOutputs writes the snapshot document and copy text for static
// hosting.
func writeOutputs(dir string, doc []byte, copyText string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.json"), append(doc, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write data.json: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "race.txt"), []byte(copyText+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write race.txt: %w", err)
	}
	return nil
}
