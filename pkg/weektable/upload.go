package weektable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/ukaji3/weektable-go/pkg/weektable/models"
	"github.com/valyala/fasthttp"
)

// DefaultUploadURL is where the upload server listens by default.
const DefaultUploadURL = "http://localhost:4000/upload"

// defaultUploadTimeout bounds a round trip when ctx has no deadline.
const defaultUploadTimeout = 60 * time.Second

// UploadClient posts workbooks to the upload endpoint and returns the parsed rows.
type UploadClient struct {
	// URL is the upload endpoint. Empty means DefaultUploadURL.
	URL string
	// Client performs requests. Nil means a zero fasthttp.Client.
	Client *fasthttp.Client
}

// FetchRows uploads r as filename in the "file" form field. Every failure
// is returned as a *TransportError.
//
// Cancellation of ctx is only observed before the request is sent; once in
// flight the round trip is bounded by the ctx deadline, or one minute when
// ctx has none.
func (c *UploadClient) FetchRows(ctx context.Context, filename string, r io.Reader) ([]models.Record, error) {
	url := c.URL
	if url == "" {
		url = DefaultUploadURL
	}
	fail := func(status int, err error) error {
		return &TransportError{URL: url, StatusCode: status, Err: err}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fail(0, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fail(0, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fail(0, err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(mw.FormDataContentType())
	req.SetBody(body.Bytes())

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultUploadTimeout)
	}
	if err := ctx.Err(); err != nil {
		return nil, fail(0, err)
	}
	client := c.Client
	if client == nil {
		client = &fasthttp.Client{}
	}
	if err := client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fail(0, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		var e models.ErrorResponse
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error != "" {
			return nil, fail(status, errors.New(e.Error))
		}
		return nil, fail(status, errors.New("upload failed"))
	}

	var out models.UploadResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fail(status, fmt.Errorf("decode response: %w", err))
	}
	if out.Data == nil {
		out.Data = []models.Record{}
	}
	return out.Data, nil
}
