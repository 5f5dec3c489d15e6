package socket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/corey/acmatch/internal/ports"
)

// Client connects to the acmatch daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Scan sends content to the daemon and collects all of its hits.
func (c *Client) Scan(params ScanParams) (*ScanResult, error) {
	var hits []ports.Hit
	result, err := c.ScanStream(params, func(h ports.Hit) bool {
		hits = append(hits, h)
		return true
	})
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []ports.Hit{}
	}
	result.Hits = hits
	return result, nil
}

// ScanStream sends content to the daemon and calls fn for each hit as the
// batches arrive. If fn returns false the connection is dropped and
// ScanStream returns a nil result and nil error. The returned result carries
// the totals but no hits.
func (c *Client) ScanStream(params ScanParams, fn func(ports.Hit) bool) (*ScanResult, error) {
	if len(params.Content) > MaxScanContent {
		return nil, fmt.Errorf("content is %d bytes, the daemon accepts at most %d", len(params.Content), MaxScanContent)
	}
	conn, err := c.send(Request{ID: "1", Method: MethodScan, Params: params})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)
	for {
		// Each batch gets its own deadline, so long outputs are not cut off.
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		resp, err := readResponse(scanner)
		if err != nil {
			return nil, err
		}
		var result ScanResult
		if err := decodeResult(resp, &result); err != nil {
			return nil, err
		}
		for _, h := range result.Hits {
			if !fn(h) {
				return nil, nil
			}
		}
		if !resp.More {
			result.Hits = nil
			return &result, nil
		}
	}
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	var result HealthResult
	if err := c.callInto(Request{ID: "1", Method: MethodHealth}, 5*time.Second, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Patterns asks the daemon for its current pattern list.
func (c *Client) Patterns() (*PatternsResult, error) {
	var result PatternsResult
	if err := c.callInto(Request{ID: "1", Method: MethodPatterns}, 5*time.Second, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reload asks the daemon to rebuild its automaton from its pattern source.
func (c *Client) Reload() (*ReloadResult, error) {
	var result ReloadResult
	if err := c.callInto(Request{ID: "1", Method: MethodReload}, 60*time.Second, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.callWithTimeout(Request{
		ID:     "1",
		Method: MethodShutdown,
	}, 5*time.Second)
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// callInto performs a call and decodes resp.Result into out.
func (c *Client) callInto(req Request, timeout time.Duration, out interface{}) error {
	resp, err := c.callWithTimeout(req, timeout)
	if err != nil {
		return err
	}
	return decodeResult(resp, out)
}

func decodeResult(resp *Response, out interface{}) error {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := json.Unmarshal(resultJSON, out); err != nil {
		return fmt.Errorf("unmarshal result: %w", err)
	}
	return nil
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxMessage)
	return readResponse(scanner)
}

// send dials the daemon and writes req. The caller closes the connection.
func (c *Client) send(req Request) (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	data, err := json.Marshal(req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	if _, err := conn.Write(data); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write: %w", err)
	}
	return conn, nil
}

// readResponse reads one response line.
func readResponse(scanner *bufio.Scanner) (*Response, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, fmt.Errorf("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
