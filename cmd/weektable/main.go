// Package main provides the CLI entry point for weektable.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/baditaflorin/l"
	"github.com/spf13/cobra"
	"github.com/ukaji3/weektable-go/internal/logging"
	"github.com/ukaji3/weektable-go/pkg/blob"
	"github.com/ukaji3/weektable-go/pkg/weektable"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/ukaji3/weektable-go/pkg/weektable/sheet"
)

// blobEnvPrefix prefixes the environment variables read by blob.ConfigFromEnv.
const blobEnvPrefix = "WEEKTABLE_BLOB"

var (
	verbose bool

	seed       uint64
	target     float64
	export     bool
	outDir     string
	blobDriver string

	pretty    bool
	uploadURL string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weektable",
		Short: "Generate and exchange weekly value tables",
		Long: `weektable fills a seven-day table with random morning and evening values
that sum exactly to a target, exports it as a workbook and serves a small
upload API that turns spreadsheets back into JSON rows.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a table that sums to the target",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0: seed from the clock)")
	generateCmd.Flags().Float64Var(&target, "target", weektable.DefaultTarget, "Grand total the table must sum to")
	generateCmd.Flags().BoolVar(&export, "export", false, "Export the generated table as a workbook")
	generateCmd.Flags().StringVarP(&outDir, "out", "o", "", "Export directory for the fs blob driver (default: current directory)")
	generateCmd.Flags().StringVar(&blobDriver, "blob-driver", "", "Blob driver for exports: fs, s3 or memory (default: $"+blobEnvPrefix+"_DRIVER or fs)")

	parseCmd := &cobra.Command{
		Use:   "parse [input.xlsx]",
		Short: "Print the rows of a workbook's first sheet as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runParse,
	}
	parseCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	uploadCmd := &cobra.Command{
		Use:   "upload [input.xlsx]",
		Short: "Send a workbook to an upload server and print the returned rows",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}
	uploadCmd.Flags().StringVar(&uploadURL, "url", weektable.DefaultUploadURL, "Upload endpoint")
	uploadCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(generateCmd, parseCmd, uploadCmd, newServeCmd())
	return rootCmd
}

// cliLogger logs to stderr when --verbose is set and discards otherwise.
func cliLogger(cmd *cobra.Command) (l.Logger, error) {
	if !verbose {
		return logging.Discard(), nil
	}
	return logging.New(logging.Config{Output: cmd.ErrOrStderr()})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger, err := cliLogger(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	// Options treats a zero target as unset, so an explicit one is rejected here.
	if err := weektable.ValidateTarget(target); err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	table := weektable.NewTable(models.DefaultWeek(), weektable.Options{Target: target, Seed: seed})
	msg, err := table.Generate()
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	snap := table.Snapshot()
	logger.Info("Generated table", "rows", len(snap), "target", table.Target())

	if err := printTable(out, snap); err != nil {
		return err
	}
	fmt.Fprintln(out, msg)

	if !export {
		return nil
	}

	cfg := blob.ConfigFromEnv(blobEnvPrefix)
	if blobDriver != "" {
		cfg.Driver = blob.Driver(blobDriver)
	}
	if outDir != "" {
		cfg.Root = outDir
	}
	store, err := blob.Open(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}

	info, err := weektable.Export(cmd.Context(), snap, store, time.Now())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	logger.Info("Exported table", "key", info.Key, "driver", string(store.Driver()), "size", info.Size)

	location := info.Location
	if location == "" {
		location = info.Key
	}
	fmt.Fprintf(out, "Exported %s\n", location)
	return nil
}

// printTable writes the table followed by its TOTAL row.
func printTable(w io.Writer, set models.EntitySet) error {
	rows, err := weektable.ExportRows(set)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, h := range models.ExportHeader {
		fmt.Fprintf(tw, "%s\t", h)
	}
	fmt.Fprintln(tw)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t\n", r.Day, r.Morning, r.Evening, r.Total)
	}
	return tw.Flush()
}

func runParse(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	f, err := os.Open(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", inputPath)
		}
		return err
	}
	defer f.Close()

	records, err := sheet.ReadFirstSheet(f, inputPath)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	return writeRows(cmd.OutOrStdout(), records)
}

func runUpload(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	logger, err := cliLogger(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", inputPath)
		}
		return err
	}
	defer f.Close()

	client := &weektable.UploadClient{URL: uploadURL}
	start := time.Now()
	records, err := client.FetchRows(cmd.Context(), filepath.Base(inputPath), f)
	if err != nil {
		return err
	}
	logger.Info("Upload parsed", "url", uploadURL, "rows", len(records), "duration", time.Since(start).String())
	return writeRows(cmd.OutOrStdout(), records)
}

// writeRows prints records in the same envelope the upload server returns.
func writeRows(w io.Writer, records []models.Record) error {
	var (
		data []byte
		err  error
	)
	resp := models.UploadResponse{Data: records}
	if pretty {
		data, err = json.MarshalIndent(resp, "", "  ")
	} else {
		data, err = json.Marshal(resp)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
