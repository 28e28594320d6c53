// Package lumberjack implements the client and server halves of the
// lumberjack v1 wire protocol: a zlib-compressed, length-framed batch
// of key/value payloads acknowledged with a fixed 6-byte reply.
package lumberjack

import (
	"bytes"
	"compress/zlib"
	"crypto/tls"
	"encoding/binary"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/technoweenie/grohl"

	linebookmark "github.com/treetopinnovationab/BookmarkingStreamReader"
	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
)

// Client sends batches of client.Data to a single lumberjack server. It
// reconnects lazily: a dropped connection is not retried inline, it is
// simply closed and reopened on the next Send. ClientOptions.Backoff,
// when set, is consulted before a reconnect attempt that follows a
// failure, so a server that keeps refusing connections doesn't get
// hammered.
type Client struct {
	options *ClientOptions

	conn     net.Conn
	sequence uint32

	lastConnectFailed bool
}

// ClientOptions configures a Client.
type ClientOptions struct {
	Network           string
	Address           string
	ConnectionTimeout time.Duration
	SendTimeout       time.Duration
	TLSConfig         *tls.Config

	// Backoff, when non-nil, is used to delay reconnect attempts after a
	// connection failure. It is reset as soon as a connection succeeds.
	Backoff *linebookmark.ExponentialBackoff
}

// NewClient constructs a Client. The connection itself is deferred
// until the first Send.
func NewClient(options *ClientOptions) *Client {
	return &Client{
		options: options,
	}
}

func (c *Client) ensureConnected() error {
	if c.conn != nil {
		return nil
	}

	logger := grohl.NewContext(grohl.Data{"ns": "lumberjack.Client", "fn": "ensureConnected", "addr": c.options.Address})

	if c.lastConnectFailed && c.options.Backoff != nil {
		delay := c.options.Backoff.Next()
		logger.Log(grohl.Data{"msg": "backing off before reconnect", "delay": delay.String()})
		time.Sleep(delay)
	}

	timer := logger.Timer(grohl.Data{})

	conn, err := net.DialTimeout(c.options.Network, c.options.Address, c.options.ConnectionTimeout)
	if err != nil {
		logger.Report(err, grohl.Data{})
		c.lastConnectFailed = true
		return err
	}

	if c.options.TLSConfig != nil {
		if c.options.TLSConfig.ServerName == "" {
			parts := strings.Split(c.options.Address, ":")
			c.options.TLSConfig.ServerName = parts[0]
		}

		tlsConn := tls.Client(conn, c.options.TLSConfig)
		tlsConn.SetDeadline(time.Now().Add(c.options.SendTimeout))
		if err := tlsConn.Handshake(); err != nil {
			conn.Close()
			logger.Report(err, grohl.Data{})
			c.lastConnectFailed = true
			return err
		}
		conn = tlsConn
	}

	timer.Finish()
	c.conn = conn
	c.lastConnectFailed = false
	if c.options.Backoff != nil {
		c.options.Backoff.Reset()
	}
	return nil
}

// Disconnect closes the current connection, if any, and resets the
// sequence counter the next connection will start from.
func (c *Client) Disconnect() error {
	var err error
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}

	c.sequence = 0
	return err
}

// Name identifies this client by the address it sends to.
func (c *Client) Name() string {
	return c.options.Address
}

// Send compresses and frames lines per the lumberjack v1 wire format,
// writes them to the connection, and blocks for the server's 6-byte
// acknowledgement.
func (c *Client) Send(lines []client.Data) error {
	if err := c.ensureConnected(); err != nil {
		return err
	}

	linesBuf := c.serialize(lines)
	linesBytes := linesBuf.Bytes()

	headerBuf := new(bytes.Buffer)

	// Window size
	headerBuf.WriteString(frameWindowSize)
	binary.Write(headerBuf, binary.BigEndian, uint32(len(lines)))

	// Compressed size
	headerBuf.WriteString(frameCompressedSize)
	binary.Write(headerBuf, binary.BigEndian, uint32(len(linesBytes)))

	c.conn.SetDeadline(time.Now().Add(c.options.SendTimeout))
	if _, err := c.conn.Write(headerBuf.Bytes()); err != nil {
		c.Disconnect()
		return err
	}

	if _, err := c.conn.Write(linesBytes); err != nil {
		c.Disconnect()
		return err
	}

	ack := make([]byte, 6)
	ackBytes := 0
	for ackBytes < len(ack) {
		n, err := c.conn.Read(ack[ackBytes:])
		if n > 0 {
			ackBytes += n
		} else if err != nil {
			c.Disconnect()
			return err
		}
	}

	if ack[0] != ackVersion || ack[1] != ackType {
		c.Disconnect()
		return errors.Errorf("unexpected ack frame %q", ack[:2])
	}
	if acked := binary.BigEndian.Uint32(ack[2:]); acked != c.sequence {
		c.Disconnect()
		return errors.Errorf("server acked sequence %d, expected %d", acked, c.sequence)
	}

	return nil
}

func (c *Client) serialize(lines []client.Data) *bytes.Buffer {
	buf := new(bytes.Buffer)
	compressor := zlib.NewWriter(buf)

	for _, data := range lines {
		c.sequence++

		compressor.Write([]byte(frameData))
		binary.Write(compressor, binary.BigEndian, uint32(c.sequence))
		binary.Write(compressor, binary.BigEndian, uint32(len(data)))
		for k, v := range data {
			binary.Write(compressor, binary.BigEndian, uint32(len(k)))
			compressor.Write([]byte(k))
			binary.Write(compressor, binary.BigEndian, uint32(len(v)))
			compressor.Write([]byte(v))
		}
	}

	compressor.Close()
	return buf
}
