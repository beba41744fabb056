package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// mockS3Transport serves the Head/Get/Put/Delete subset of the S3 API from memory.
type mockS3Transport struct {
	mu      sync.Mutex
	objects map[string]mockObject
}

type mockObject struct {
	body        []byte
	contentType string
}

func newMockS3(t *testing.T) *S3 {
	t.Helper()
	rt := &mockS3Transport{objects: make(map[string]mockObject)}
	store, err := NewS3(context.Background(), S3Config{
		Region:          "us-east-1",
		Bucket:          "mock-bucket",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: rt},
	})
	require.NoError(t, err)
	return store
}

func (m *mockS3Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch req.Method {
	case http.MethodHead:
		if obj, ok := m.objects[key]; ok {
			return respond(http.StatusOK, nil, objectHeaders(obj)), nil
		}
		return respond(http.StatusNotFound, nil, http.Header{}), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeSingleChunk(body); ok {
			body = dec
		}
		m.objects[key] = mockObject{body: body, contentType: req.Header.Get("Content-Type")}
		return respond(http.StatusOK, nil, http.Header{"ETag": {"\"etag\""}}), nil
	case http.MethodGet:
		if obj, ok := m.objects[key]; ok {
			return respond(http.StatusOK, obj.body, objectHeaders(obj)), nil
		}
		return respond(http.StatusNotFound, []byte("<Error><Code>NoSuchKey</Code></Error>"), http.Header{"Content-Type": {"application/xml"}}), nil
	case http.MethodDelete:
		delete(m.objects, key)
		return respond(http.StatusNoContent, nil, http.Header{}), nil
	}
	return respond(http.StatusNotImplemented, nil, http.Header{}), nil
}

func objectHeaders(obj mockObject) http.Header {
	return http.Header{
		"Content-Length": {fmt.Sprintf("%d", len(obj.body))},
		"Content-Type":   {obj.contentType},
		"ETag":           {"\"etag\""},
		"Last-Modified":  {time.Now().UTC().Format(http.TimeFormat)},
	}
}

func respond(status int, body []byte, header http.Header) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        header,
	}
}

// decodeSingleChunk unwraps an aws-chunked payload of the form <hex>\r\n<body>\r\n0\r\n...
func decodeSingleChunk(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	var size int
	if _, err := fmt.Sscanf(parts[0], "%x", &size); err != nil || size != len(parts[1]) {
		return nil, false
	}
	return []byte(parts[1]), true
}
