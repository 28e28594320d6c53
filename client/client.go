// Package client defines the payload shape and remote-forwarding
// contract shared by every transport linebookmarkd can send lines
// through.
package client

import "fmt"

// Data is a single line's payload, merged with any fields configured
// for the input it was read from.
type Data map[string]string

// Client forwards a batch of lines to a remote system.
type Client interface {
	Send(lines []Data) error

	// Name identifies this client for logging, typically the remote
	// address it sends to.
	Name() string
}

// TestClient is an in-memory client that records what was sent through
// it, for use in tests.
type TestClient struct {
	DataSent []Data

	// Error, when set, is returned by Send instead of recording data.
	// Useful for exercising retry behavior.
	Error error
}

func (c *TestClient) Name() string { return "test" }

func (c *TestClient) Send(lines []Data) error {
	if c.Error != nil {
		return c.Error
	}
	c.DataSent = append(c.DataSent, lines...)
	return nil
}

// StdoutClient writes every line to standard out. Useful for local
// development without a lumberjack server running.
type StdoutClient struct{}

func (c *StdoutClient) Name() string { return "stdout" }

func (c *StdoutClient) Send(lines []Data) error {
	for _, data := range lines {
		fmt.Printf("%#v\n", data)
	}
	return nil
}
