package kernel

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
)

// RunStdio is the child-side entry point, dispatched by cmd/server when
// invoked with the kernel's hidden re-exec flag. It owns a fresh Loop for
// the lifetime of the process and pumps newline-delimited JSON requests
// from in to responses on out until a shutdown request arrives or in is
// closed.
func RunStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	loop := NewLoop()
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			continue // malformed request: drop and keep the loop alive
		}

		if req.Kind == ReqShutdown {
			return nil
		}

		for _, resp := range loop.Handle(ctx, req) {
			if err := encoder.Encode(resp); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
