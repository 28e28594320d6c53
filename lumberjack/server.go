package lumberjack

import (
	"bytes"
	"compress/zlib"
	"crypto/tls"
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/technoweenie/grohl"

	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
)

// Frame tags used by the lumberjack v1 wire format, shared between
// Client and Server.
const (
	frameWindowSize     = "1W"
	frameCompressedSize = "1C"
	frameData           = "1D"

	ackVersion byte = '1'
	ackType    byte = 'A'
)

type Server struct {
	options  *serverOptions
	listener net.Listener
}

type serverOptions struct {
	Network string
	Address string

	TLSConfig *tls.Config

	WriteTimeout time.Duration
	ReadTimeout  time.Duration
}

func newLumberjackServer(options *serverOptions) (*Server, error) {
	listener, err := net.Listen(options.Network, options.Address)
	if err != nil {
		return nil, err
	}

	return &Server{
		options:  options,
		listener: listener,
	}, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// ServeInto accepts connections until the listener is closed, decoding
// each batch of lines it receives and pushing them onto dataCh.
func (s *Server) ServeInto(dataCh chan<- client.Data) error {
	logger := grohl.NewContext(grohl.Data{"ns": "lumberjack.Server", "addr": s.Addr().String()})

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}

		if s.options.TLSConfig != nil {
			conn = tls.Server(conn, s.options.TLSConfig)
		}

		go func() {
			if err := s.serveClient(conn, dataCh); err != nil {
				logger.Report(err, grohl.Data{"msg": "connection closed"})
			}
		}()
	}
}

func (s *Server) serveClient(conn net.Conn, dataCh chan<- client.Data) error {
	defer conn.Close()
	controlBuf := make([]byte, 8) // holds the two-byte frame tags

	conn.SetReadDeadline(time.Now().Add(s.options.ReadTimeout))

	var windowSize uint32
	if err := s.readTag(conn, controlBuf, frameWindowSize); err != nil {
		return err
	}
	if err := binary.Read(conn, binary.BigEndian, &windowSize); err != nil {
		return errors.Wrap(err, "reading window size")
	}

	var compressedSize uint32
	if err := s.readTag(conn, controlBuf, frameCompressedSize); err != nil {
		return err
	}
	if err := binary.Read(conn, binary.BigEndian, &compressedSize); err != nil {
		return errors.Wrap(err, "reading compressed size")
	}

	// TODO: stream the decompressor directly off conn instead of buffering
	// the whole compressed payload up front.
	compressedBuf := make([]byte, int(compressedSize))
	if _, err := io.ReadFull(conn, compressedBuf); err != nil {
		return errors.Wrap(err, "reading compressed payload")
	}
	uncompressor, err := zlib.NewReader(bytes.NewBuffer(compressedBuf))
	if err != nil {
		return errors.Wrap(err, "opening zlib reader")
	}
	defer uncompressor.Close()

	lines := make([]client.Data, 0, int(windowSize))
	var sequence uint32
	for i := 0; i < int(windowSize); i++ {
		if err := s.readTag(uncompressor, controlBuf, frameData); err != nil {
			return err
		}

		if err := binary.Read(uncompressor, binary.BigEndian, &sequence); err != nil {
			return errors.Wrap(err, "reading sequence")
		}

		data, err := s.readData(uncompressor)
		if err != nil {
			return err
		}

		lines = append(lines, data)
	}

	conn.SetWriteDeadline(time.Now().Add(s.options.WriteTimeout))
	if _, err := conn.Write(s.ack(sequence)); err != nil {
		return errors.Wrap(err, "writing ack")
	}

	for _, data := range lines {
		dataCh <- data
	}
	return nil
}

// readTag reads a two-byte frame tag and checks it matches want.
func (s *Server) readTag(r io.Reader, buf []byte, want string) error {
	if _, err := io.ReadFull(r, buf[0:2]); err != nil {
		return errors.Wrapf(err, "reading %q tag", want)
	}
	if string(buf[0:2]) != want {
		return errors.Errorf("expected %q frame tag, got %q", want, buf[0:2])
	}
	return nil
}

// readData decodes one key/value-pair-length-prefixed client.Data record.
func (s *Server) readData(r io.Reader) (client.Data, error) {
	var dataLength uint32
	if err := binary.Read(r, binary.BigEndian, &dataLength); err != nil {
		return nil, errors.Wrap(err, "reading payload key count")
	}

	data := make(client.Data, int(dataLength))
	for j := 0; j < int(dataLength); j++ {
		key, err := s.readLengthPrefixed(r)
		if err != nil {
			return nil, errors.Wrap(err, "reading key")
		}
		value, err := s.readLengthPrefixed(r)
		if err != nil {
			return nil, errors.Wrap(err, "reading value")
		}
		data[string(key)] = string(value)
	}
	return data, nil
}

func (s *Server) readLengthPrefixed(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, err
	}
	buf := make([]byte, int(length))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ack builds the fixed 6-byte lumberjack acknowledgement: a version
// byte, an 'A' (ack) type byte, and the big-endian sequence number of
// the last line processed.
func (s *Server) ack(sequence uint32) []byte {
	buf := make([]byte, 6)
	buf[0] = ackVersion
	buf[1] = ackType
	binary.BigEndian.PutUint32(buf[2:], sequence)
	return buf
}

func (s *Server) Close() error {
	return s.listener.Close()
}
