// Package detector talks to the YOLO inference sidecar that localizes the
// fields of the front of the cédula. The sidecar is reachable either over a
// WebSocket (ws://, wss://) or plain HTTP (http://, https://).
package detector

import (
	"CedulaOCR/internal/entity"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotConfigured     = errors.New("detector URL not configured")
	ErrUnsupportedScheme = errors.New("unsupported detector URL scheme")
	ErrMalformedBox      = errors.New("detection bounding box must have four coordinates")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type IRegionDetector interface {
	Detect(ctx context.Context, image []byte, confidence float64) ([]entity.DetectedRegion, error)
	Classes(ctx context.Context) (map[int]string, error)
	Close() error
}

type Options struct {
	URL          string
	Timeout      time.Duration
	LoadAttempts uint
	RetryDelay   time.Duration
}

// Load connects to the sidecar and fetches its class table. It retries the
// request LoadAttempts times; a failure here means the process runs without a
// detector for its whole lifetime.
func Load(ctx context.Context, opts Options, log *logrus.Logger) (IRegionDetector, error) {
	if opts.URL == "" {
		return nil, ErrNotConfigured
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.LoadAttempts == 0 {
		opts.LoadAttempts = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}

	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse detector URL: %w", err)
	}

	var d IRegionDetector
	switch u.Scheme {
	case "ws", "wss":
		d = newWebSocketDetector(opts.URL, opts.Timeout, log)
	case "http", "https":
		d = newHTTPDetector(opts.URL, opts.Timeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	var names map[int]string
	err = retry.Do(
		func() error {
			var classesErr error
			names, classesErr = d.Classes(ctx)
			return classesErr
		},
		retry.Context(ctx),
		retry.Attempts(opts.LoadAttempts),
		retry.Delay(opts.RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithFields(logrus.Fields{
				"attempt": n + 1,
				"url":     opts.URL,
				"error":   err.Error(),
			}).Warn("Detector class lookup failed, retrying")
		}),
	)
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("load detector: %w", err)
	}

	log.WithFields(logrus.Fields{
		"url":     opts.URL,
		"classes": ClassList(names),
	}).Info("Detector loaded")

	return d, nil
}

// ClassList renders a class table ordered by index.
func ClassList(names map[int]string) []string {
	idx := make([]int, 0, len(names))
	for i := range names {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, names[i])
	}
	return out
}

type detectRequest struct {
	Action     string  `json:"action"`
	Image      string  `json:"image,omitempty"`
	Confidence float64 `json:"conf,omitempty"`
}

type wireDetection struct {
	Label      string    `json:"label"`
	Class      int       `json:"class"`
	BBox       []float64 `json:"bbox"`
	Confidence float64   `json:"conf"`
}

type detectResponse struct {
	Detections []wireDetection    `json:"detections"`
	Names      map[string]string `json:"names,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func (r *detectResponse) err() error {
	if r.Error != "" {
		return fmt.Errorf("detector error: %s", r.Error)
	}
	return nil
}

func parseNames(raw map[string]string) (map[int]string, error) {
	names := make(map[int]string, len(raw))
	for k, v := range raw {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("class index %q: %w", k, err)
		}
		names[i] = v
	}
	return names, nil
}

// toRegions converts wire detections, resolving missing labels through the
// class table. Coordinates are truncated toward zero.
func toRegions(dets []wireDetection, names map[int]string) ([]entity.DetectedRegion, error) {
	regions := make([]entity.DetectedRegion, 0, len(dets))
	for _, d := range dets {
		if len(d.BBox) != 4 {
			return nil, ErrMalformedBox
		}
		label := d.Label
		if label == "" {
			label = names[d.Class]
		}
		regions = append(regions, entity.DetectedRegion{
			Label: label,
			Box: entity.BoundingBox{
				X1: int(d.BBox[0]),
				Y1: int(d.BBox[1]),
				X2: int(d.BBox[2]),
				Y2: int(d.BBox[3]),
			},
			Confidence: d.Confidence,
		})
	}
	return regions, nil
}
