package nats

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tartanair/va-backend/internal/types"
)

const (
	SubjectPositions = "va.positions"
)

// Client publishes accepted position reports to JetStream so downstream
// consumers (archival, analytics) can replay them.
type Client struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New creates a new NATS client
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	// Create stream if it doesn't exist
	_, err = js.AddStream(&nats.StreamConfig{
		Name:     "VA_POSITIONS",
		Subjects: []string{SubjectPositions},
		Storage:  nats.FileStorage,
		MaxAge:   72 * time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn: nc,
		js:   js,
	}, nil
}

// PublishPosition publishes a position report
func (c *Client) PublishPosition(report *types.PositionReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal position report: %w", err)
	}

	if _, err := c.js.Publish(SubjectPositions, data); err != nil {
		return fmt.Errorf("failed to publish position report: %w", err)
	}

	return nil
}

// SubscribePositions subscribes to position reports
func (c *Client) SubscribePositions(handler func(*types.PositionReport)) error {
	_, err := c.js.Subscribe(SubjectPositions, func(msg *nats.Msg) {
		var report types.PositionReport
		if err := json.Unmarshal(msg.Data, &report); err != nil {
			log.Printf("Error unmarshaling position report: %v", err)
			return
		}
		handler(&report)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
