package server

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/weektable-go/pkg/blob"
	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/ukaji3/weektable-go/pkg/weektable/sheet"
	"github.com/valyala/fasthttp"
)

// UploadField is the multipart form field carrying the workbook.
const UploadField = "file"

// uploadKeyPrefix namespaces temporary uploads inside the store.
const uploadKeyPrefix = "uploads/"

// Upload outcomes, used as the metrics label.
const (
	outcomeOK          = "ok"
	outcomeMissingFile = "missing_file"
	outcomeStoreError  = "store_error"
	outcomeParseError  = "parse_error"
)

// handleUpload stores the uploaded workbook under a per-request key, parses
// its first sheet, and removes it again.
func (s *Server) handleUpload(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		writeJSONError(ctx, "Method not allowed")
		return
	}

	start := time.Now()
	fh, err := ctx.FormFile(UploadField)
	if err != nil {
		s.metrics.observeUpload(outcomeMissingFile, start, 0)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		writeJSONError(ctx, "No file uploaded")
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.cfg.ParseTimeout)
	defer cancel()

	key := uploadKeyPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	file, err := fh.Open()
	if err == nil {
		_, err = s.store.Put(c, key, file, blob.PutOptions{
			ContentType: fh.Header.Get("Content-Type"),
			Metadata:    map[string]string{"filename": fh.Filename},
		})
		_ = file.Close()
	}
	if err != nil {
		s.logger.Error("Failed to store upload", "key", key, "filename", fh.Filename, "error", err)
		s.metrics.observeUpload(outcomeStoreError, start, 0)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Failed to store upload")
		return
	}
	if !s.cfg.KeepUploads {
		defer s.removeUpload(key)
	}

	records, err := s.parseStored(c, key, fh.Filename)
	if err != nil {
		s.logger.Error("Failed to parse Excel", "key", key, "filename", fh.Filename, "error", err)
		s.metrics.observeUpload(outcomeParseError, start, 0)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		writeJSONError(ctx, "Failed to parse Excel")
		return
	}

	s.metrics.observeUpload(outcomeOK, start, len(records))
	s.logger.Info("Upload parsed",
		"key", key,
		"filename", fh.Filename,
		"rows", len(records),
		"duration", time.Since(start),
	)
	ctx.SetStatusCode(fasthttp.StatusOK)
	writeJSONResponse(ctx, models.UploadResponse{Data: records})
}

func (s *Server) parseStored(ctx context.Context, key, filename string) ([]models.Record, error) {
	_, rc, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return sheet.ReadFirstSheet(rc, filename)
}

func (s *Server) removeUpload(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove upload", "key", key, "error", err)
	}
}
