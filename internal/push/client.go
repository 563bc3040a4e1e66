package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ChunkSize is the maximum number of messages the Expo gateway accepts in a
// single request.
const ChunkSize = 100

// Message is one push notification addressed to a single device token
type Message struct {
	To    string                 `json:"to"`
	Sound string                 `json:"sound,omitempty"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Ticket is the gateway's per-message delivery receipt
type Ticket struct {
	Status  string                 `json:"status"`
	ID      string                 `json:"id,omitempty"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Client submits push messages to the Expo gateway in chunks
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a push client for the given gateway URL
func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Send submits messages in chunks of ChunkSize and returns the delivery
// tickets in submission order. A failed chunk produces error tickets for its
// messages and does not stop submission of the remaining chunks; Send returns
// an error only when every chunk failed.
func (c *Client) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	if len(messages) == 0 {
		return nil, nil
	}

	tickets := make([]Ticket, 0, len(messages))
	var delivered, failed int

	for start := 0; start < len(messages); start += ChunkSize {
		end := start + ChunkSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[start:end]

		chunkTickets, err := c.sendChunk(ctx, chunk)
		if err != nil {
			slog.Error("Push chunk submission failed",
				"chunk_size", len(chunk),
				"error", err.Error(),
			)
			for range chunk {
				tickets = append(tickets, Ticket{Status: "error", Message: err.Error()})
			}
			failed++
			continue
		}

		tickets = append(tickets, chunkTickets...)
		delivered++
	}

	if delivered == 0 && failed > 0 {
		return tickets, fmt.Errorf("all %d push chunks failed", failed)
	}
	return tickets, nil
}

func (c *Client) sendChunk(ctx context.Context, chunk []Message) ([]Ticket, error) {
	jsonData, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []Ticket `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Data) != len(chunk) {
		slog.Warn("Gateway returned unexpected ticket count",
			"sent", len(chunk),
			"received", len(result.Data),
		)
	}
	return result.Data, nil
}
