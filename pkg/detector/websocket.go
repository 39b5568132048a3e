package detector

import (
	"CedulaOCR/internal/entity"
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// webSocketDetector keeps one connection to the sidecar. Requests are
// serialized on that connection since replies carry no correlation ID.
type webSocketDetector struct {
	url          string
	conn         *websocket.Conn
	names        map[int]string
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	done         chan struct{}
	closeOnce    sync.Once
}

func newWebSocketDetector(url string, timeout time.Duration, log *logrus.Logger) *webSocketDetector {
	return &webSocketDetector{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  timeout,
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}
}

func (c *webSocketDetector) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Error sending pong to detector: %v", err)
		}
		return nil
	})

	c.conn = conn
	go c.keepAlive(conn)

	return nil
}

func (c *webSocketDetector) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *webSocketDetector) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.conn != conn {
			c.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(c.writeTimeout))
		if err != nil {
			c.log.Warnf("Ping to detector failed, marking connection as dead: %v", err)
			c.dropLocked()
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
	}
}

// roundTrip sends one request and waits for its reply. A transport error
// drops the connection; the next call dials again.
func (c *webSocketDetector) roundTrip(ctx context.Context, req detectRequest) (*detectResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	conn := c.conn

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal detector request: %w", err)
	}

	writeDeadline := time.Now().Add(c.writeTimeout)
	readDeadline := time.Now().Add(c.readTimeout)
	if d, ok := ctx.Deadline(); ok {
		if d.Before(writeDeadline) {
			writeDeadline = d
		}
		if d.Before(readDeadline) {
			readDeadline = d
		}
	}

	conn.SetWriteDeadline(writeDeadline)
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.dropLocked()
		return nil, fmt.Errorf("error sending detector request: %w", err)
	}

	conn.SetReadDeadline(readDeadline)
	_, message, err := conn.ReadMessage()
	if err != nil {
		c.dropLocked()
		return nil, fmt.Errorf("error reading detector response: %w", err)
	}

	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})

	var resp detectResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, fmt.Errorf("error unmarshaling detector response: %w", err)
	}
	if err := resp.err(); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *webSocketDetector) Classes(ctx context.Context) (map[int]string, error) {
	resp, err := c.roundTrip(ctx, detectRequest{Action: "classes"})
	if err != nil {
		return nil, err
	}

	names, err := parseNames(resp.Names)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()

	return names, nil
}

func (c *webSocketDetector) Detect(ctx context.Context, image []byte, confidence float64) ([]entity.DetectedRegion, error) {
	resp, err := c.roundTrip(ctx, detectRequest{
		Action:     "detect",
		Image:      base64.StdEncoding.EncodeToString(image),
		Confidence: confidence,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	names := c.names
	c.mu.Unlock()

	return toRegions(resp.Detections, names)
}

func (c *webSocketDetector) Close() error {
	c.closeOnce.Do(func() { close(c.done) })

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropLocked()
	return nil
}
