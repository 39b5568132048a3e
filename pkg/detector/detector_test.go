package detector

import (
	"CedulaOCR/internal/entity"
	"CedulaOCR/pkg/log"
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var classTable = map[string]string{
	"0": entity.LabelFirstname,
	"1": entity.LabelIdentityNumber,
	"2": entity.LabelLastname,
	"3": entity.LabelLastnameFirst,
	"4": entity.LabelLastnameSecond,
}

func newHTTPSidecar(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/predict/classes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(detectResponse{Names: classTable})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		assert.Equal(t, "0.25", r.FormValue("conf"))
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		_ = json.NewEncoder(w).Encode(detectResponse{
			Detections: []wireDetection{
				{Class: 1, BBox: []float64{10.9, 20.2, 110.7, 40.5}, Confidence: 0.91},
				{Label: entity.LabelFirstname, Class: 0, BBox: []float64{5, 5, 50, 15}, Confidence: 0.8},
			},
		})
	})
	return httptest.NewServer(mux)
}

func TestHTTPDetector(t *testing.T) {
	srv := newHTTPSidecar(t)
	defer srv.Close()

	d, err := Load(context.Background(), Options{URL: srv.URL + "/predict", LoadAttempts: 1}, log.NewDiscardLogger())
	require.NoError(t, err)
	defer d.Close()

	names, err := d.Classes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"firstname", "identity-number", "lastname", "lastname_first", "lastname_second"}, ClassList(names))

	regions, err := d.Detect(context.Background(), []byte("png-bytes"), 0.25)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	assert.Equal(t, entity.LabelIdentityNumber, regions[0].Label)
	assert.Equal(t, entity.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 40}, regions[0].Box)
	assert.InDelta(t, 0.91, regions[0].Confidence, 1e-9)
	assert.Equal(t, entity.LabelFirstname, regions[1].Label)
}

func TestHTTPDetectorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := newHTTPDetector(srv.URL, time.Second)
	_, err := d.Detect(context.Background(), []byte("x"), 0.25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLoadRetriesThenGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := Load(context.Background(), Options{
		URL:          srv.URL,
		LoadAttempts: 3,
		RetryDelay:   time.Millisecond,
	}, log.NewDiscardLogger())

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLoadRejectsBadConfig(t *testing.T) {
	_, err := Load(context.Background(), Options{}, log.NewDiscardLogger())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = Load(context.Background(), Options{URL: "ftp://sidecar"}, log.NewDiscardLogger())
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestToRegionsRejectsMalformedBox(t *testing.T) {
	_, err := toRegions([]wireDetection{{Label: "firstname", BBox: []float64{1, 2, 3}}}, nil)
	assert.ErrorIs(t, err, ErrMalformedBox)
}

func TestWebSocketDetector(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req detectRequest
			if err := json.Unmarshal(msg, &req); err != nil {
				return
			}

			var resp detectResponse
			switch req.Action {
			case "classes":
				resp.Names = classTable
			case "detect":
				img, err := base64.StdEncoding.DecodeString(req.Image)
				if err != nil || string(img) != "frame" {
					resp.Error = "bad image"
					break
				}
				resp.Detections = []wireDetection{
					{Class: 2, BBox: []float64{1, 2, 3, 4}, Confidence: req.Confidence},
				}
			default:
				resp.Error = "unknown action"
			}
			out, _ := json.Marshal(resp)
			if err := conn.WriteMessage(websocket.TextMessage, out); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	d, err := Load(context.Background(), Options{URL: wsURL, LoadAttempts: 1}, log.NewDiscardLogger())
	require.NoError(t, err)
	defer d.Close()

	regions, err := d.Detect(context.Background(), []byte("frame"), 0.5)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, entity.LabelLastname, regions[0].Label)
	assert.Equal(t, entity.BoundingBox{X1: 1, Y1: 2, X2: 3, Y2: 4}, regions[0].Box)
	assert.InDelta(t, 0.5, regions[0].Confidence, 1e-9)

	_, err = d.Detect(context.Background(), []byte("other"), 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad image")
}
