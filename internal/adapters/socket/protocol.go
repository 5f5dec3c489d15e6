// Package socket implements a JSON-over-Unix-socket protocol for the acmatch daemon.
// The protocol uses newline-delimited JSON: each message is one JSON object + \n.
package socket

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"

	"github.com/corey/acmatch/internal/ports"
)

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/acmatch-{first12hex}.sock
func SocketPath(projectRoot string) string {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/acmatch-%x.sock", h[:6])
}

// Method names for the protocol.
const (
	MethodScan     = "scan"
	MethodHealth   = "health"
	MethodPatterns = "patterns"
	MethodReload   = "reload"
	MethodShutdown = "shutdown"
)

// Request is the wire format for client-to-server messages.
type Request struct {
	ID     string      `json:"id"`
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Response is the wire format for server-to-client messages. A scan answers
// with zero or more partial responses (More set, Result a ScanResult holding
// one batch of hits) followed by one final response carrying the last batch
// and the totals.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	More   bool        `json:"more,omitempty"`
}

// ScanBatchSize is the number of hits per scan response line.
const ScanBatchSize = 4096

// MaxScanContent is the largest content a scan request may carry. The
// request travels as one base64 line bounded by maxMessage.
const MaxScanContent = maxMessage/4*3 - 64*1024

// ScanParams is the params for a scan request. Content travels as base64
// (encoding/json's []byte form) so arbitrary bytes survive the trip.
type ScanParams struct {
	Content  []byte `json:"content"`
	Limit    int    `json:"limit,omitempty"`    // 0 = unlimited
	Distinct bool   `json:"distinct,omitempty"` // only first hit per pattern
}

// ScanResult is the result of a scan request. In a partial response only
// Hits is set; Count, Truncated and Elapsed arrive with the final one.
type ScanResult struct {
	Hits      []ports.Hit `json:"hits"`
	Count     int         `json:"count"`
	Truncated bool        `json:"truncated,omitempty"`
	Elapsed   string      `json:"elapsed"`
}

// HealthResult is the result of a health request.
type HealthResult struct {
	Status       string `json:"status"`
	Source       string `json:"source"`
	PatternCount int    `json:"pattern_count"`
	NodeCount    int    `json:"node_count"`
	Reloads      int    `json:"reloads"`
	Uptime       string `json:"uptime"`
}

// PatternsResult is the result of a patterns request.
type PatternsResult struct {
	Patterns []string `json:"patterns"`
	Count    int      `json:"count"`
}

// ReloadResult is the result of a reload request.
type ReloadResult struct {
	Source       string `json:"source"`
	PatternCount int    `json:"pattern_count"`
	NodeCount    int    `json:"node_count"`
	Elapsed      string `json:"elapsed"`
}
