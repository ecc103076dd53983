package dprint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// The editor service speaks length-prefixed JSON over stdin/stdout, one
// request/response pair at a time:
//
//	Content-Length: <n>\r\n
//	\r\n
//	<n bytes of JSON>
//
// Correlation is by integer id. The transport itself allows interleaving;
// the one-call-in-flight discipline lives in the Supervisor.

type request struct {
	ID     uint32 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type response struct {
	ID     uint32          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// FormatRequest is the payload of a "format" call.
type FormatRequest struct {
	FilePath string         `json:"filePath"`
	FileText string         `json:"fileText"`
	Override map[string]any `json:"override,omitempty"`
}

// FormatResponse is the result of a "format" call. Text is nil when the file
// is already formatted or no plugin matched it.
type FormatResponse struct {
	Text *string `json:"text"`
}

func writeMessage(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			length, err = strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("malformed Content-Length: %w", err)
			}
		}
	}
	if length < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
