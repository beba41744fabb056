package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/ukaji3/weektable-go/internal/logging"
	"github.com/ukaji3/weektable-go/internal/server"
	"github.com/ukaji3/weektable-go/pkg/blob"
)

// defaultUploadRoot is where the fs driver keeps uploads while they are parsed.
const defaultUploadRoot = "./uploads"

var (
	port          int
	logFile       string
	jsonLogs      bool
	asyncLogs     bool
	keepUploads   bool
	maxUploadSize int
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spreadsheet upload API",
		Long: `serve accepts multipart uploads on POST /upload and answers with the rows
of the first worksheet as JSON. The port falls back to $PORT, then 4000.
Upload storage is configured through ` + blobEnvPrefix + `_* variables.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default: $PORT or 4000)")
	serveCmd.Flags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout")
	serveCmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Emit JSON log lines")
	serveCmd.Flags().BoolVar(&asyncLogs, "async-logs", false, "Buffer log writes in the background")
	serveCmd.Flags().BoolVar(&keepUploads, "keep-uploads", false, "Keep uploaded files after parsing")
	serveCmd.Flags().IntVar(&maxUploadSize, "max-upload-size", server.DefaultMaxUploadSize, "Maximum request body size in bytes")
	return serveCmd
}

// resolvePort picks the flag value, then $PORT, then the default.
func resolvePort(flagPort int) (int, error) {
	if flagPort > 0 {
		return flagPort, nil
	}
	env := os.Getenv("PORT")
	if env == "" {
		return server.DefaultPort, nil
	}
	p, err := strconv.Atoi(env)
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid PORT %q", env)
	}
	return p, nil
}

// uploadStoreConfig reads the blob config from the environment, rooting
// the fs driver at ./uploads unless told otherwise.
func uploadStoreConfig() blob.Config {
	cfg := blob.ConfigFromEnv(blobEnvPrefix)
	if cfg.Root == "" {
		cfg.Root = defaultUploadRoot
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(logging.Config{
		File:   logFile,
		Output: cmd.OutOrStdout(),
		JSON:   jsonLogs,
		Async:  asyncLogs,
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg := server.DefaultConfig()
	if cfg.Port, err = resolvePort(port); err != nil {
		return err
	}
	cfg.KeepUploads = keepUploads
	cfg.MaxUploadSize = maxUploadSize

	storeCfg := uploadStoreConfig()
	store, err := blob.Open(cmd.Context(), storeCfg)
	if err != nil {
		return fmt.Errorf("failed to open blob store: %w", err)
	}
	logger.Info("Upload store ready", "driver", string(store.Driver()), "root", storeCfg.Root)

	srv := server.New(cfg, store, logger)
	if err := srv.ListenAndServe(cmd.Context()); err != nil {
		logger.Error("Server failed", "error", err)
		return err
	}
	return nil
}
