package detector

import (
	"CedulaOCR/internal/entity"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// httpDetector posts the image as multipart form data to the sidecar's
// predict endpoint. The class table lives at <url>/classes.
type httpDetector struct {
	predictURL string
	client     *http.Client
	mu         sync.RWMutex
	names      map[int]string
}

func newHTTPDetector(predictURL string, timeout time.Duration) *httpDetector {
	return &httpDetector{
		predictURL: strings.TrimRight(predictURL, "/"),
		client:     &http.Client{Timeout: timeout},
	}
}

func (m *httpDetector) Detect(ctx context.Context, image []byte, confidence float64) ([]entity.DetectedRegion, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(confidence, 'f', -1, 64)); err != nil {
		return nil, fmt.Errorf("write conf field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.predictURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result detectResponse
	if err := m.do(req, &result); err != nil {
		return nil, err
	}

	m.mu.RLock()
	names := m.names
	m.mu.RUnlock()

	return toRegions(result.Detections, names)
}

func (m *httpDetector) Classes(ctx context.Context) (map[int]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.predictURL+"/classes", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var result detectResponse
	if err := m.do(req, &result); err != nil {
		return nil, err
	}

	names, err := parseNames(result.Names)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.names = names
	m.mu.Unlock()

	return names, nil
}

func (m *httpDetector) do(req *http.Request, out *detectResponse) error {
	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return out.err()
}

func (m *httpDetector) Close() error {
	m.client.CloseIdleConnections()
	return nil
}
