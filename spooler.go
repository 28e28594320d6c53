package linebookmark

import (
	"time"
)

// Spooler batches lines read from tracked files into chunks of up to
// Size FileData values, so Supervisor sends and acknowledges bookmarks
// in batches rather than one network round trip per line. Timeout
// bounds how long a partial chunk can sit unsent when the tailed files
// aren't producing lines fast enough to fill it.
type Spooler struct {
	Size    int
	Timeout time.Duration
}

const (
	flushReasonSize    = "size"
	flushReasonTimeout = "timeout"
)

func (s *Spooler) Spool(input chan *FileData, output chan []*FileData) {
	timer := time.NewTimer(s.Timeout)
	currentChunk := make([]*FileData, 0, s.Size)
	for {
		select {
		case fileData, ok := <-input:
			if !ok {
				return
			}
			currentChunk = append(currentChunk, fileData)
			if len(currentChunk) >= s.Size {
				s.flush(output, currentChunk, flushReasonSize)
				currentChunk = make([]*FileData, 0, s.Size)
			}
		case <-timer.C:
			if len(currentChunk) > 0 {
				s.flush(output, currentChunk, flushReasonTimeout)
				currentChunk = make([]*FileData, 0, s.Size)
			}
			timer.Reset(s.Timeout)
		}
	}
}

func (s *Spooler) flush(output chan []*FileData, chunk []*FileData, reason string) {
	if len(chunk) == 0 {
		return
	}
	spoolFlushesTotal.WithLabelValues(reason).Inc()
	output <- chunk
}
