// Package logging builds the structured logger shared by the CLI and server.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/baditaflorin/l"
)

// Config selects where and how log lines are written.
type Config struct {
	// File is a log file path. Empty means Output.
	File string
	// Output is used when File is empty. Nil means stdout.
	Output io.Writer
	// JSON switches from text to JSON lines.
	JSON bool
	// Async buffers writes in the background.
	Async bool
}

// fileLogger closes the log file it writes to after the logger itself.
type fileLogger struct {
	l.Logger
	file *os.File
}

func (f *fileLogger) Close() error {
	err := f.Logger.Close()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// New creates a logger from cfg. Callers Close it to flush buffered lines
// and release the log file.
func New(cfg Config) (l.Logger, error) {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	var file *os.File
	if cfg.File != "" {
		var err error
		file, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
	}

	logger, err := l.NewStandardFactory().CreateLogger(l.Config{
		Output:      output,
		JsonFormat:  cfg.JSON,
		AsyncWrite:  cfg.Async,
		BufferSize:  1024 * 1024,       // 1MB
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxBackups:  5,
		AddSource:   true,
		Metrics:     false,
	})
	if err != nil {
		if file != nil {
			_ = file.Close()
		}
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if file != nil {
		return &fileLogger{Logger: logger, file: file}, nil
	}
	return logger, nil
}

// Discard returns a logger that drops everything, for tests and quiet CLI runs.
func Discard() l.Logger {
	logger, err := New(Config{Output: io.Discard})
	if err != nil {
		panic(err)
	}
	return logger
}
