package linebookmark

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/technoweenie/grohl"

	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
)

const (
	// supervisorSpoolOutSize is the number of chunks ready to send to
	// the remote servers to keep buffered in memory.
	supervisorSpoolOutSize = 16
)

// Supervisor pulls the whole file tailer together: it globs the
// configured inputs, connects each matched file's FileReader to a
// spooler, fans spooled chunks out to every configured Client, and
// snapshots bookmarks after a successful send.
type Supervisor struct {
	files       []InputConfiguration
	clients     []client.Client
	snapshotter Snapshotter

	SpoolSize    int
	SpoolTimeout time.Duration
	GlobRefresh  time.Duration

	backoff ExponentialBackoff

	done chan struct{}
}

// NewSupervisor constructs a Supervisor with reasonable defaults: a
// 1024-line spool, 1-second spool timeout, and 15-second glob refresh.
// Callers typically override these from configuration before calling
// Start.
func NewSupervisor(files []InputConfiguration, clients []client.Client, snapshotter Snapshotter) *Supervisor {
	return &Supervisor{
		files:        files,
		clients:      clients,
		snapshotter:  snapshotter,
		SpoolSize:    1024,
		SpoolTimeout: 1 * time.Second,
		GlobRefresh:  15 * time.Second,
		backoff:      ExponentialBackoff{Minimum: 1 * time.Second, Maximum: 30 * time.Second},
	}
}

// Start begins globbing and tailing files in a background goroutine.
func (s *Supervisor) Start() {
	s.done = make(chan struct{})
	go s.serve(s.done)
}

// Stop signals the background goroutine to exit. It does not block
// until it has.
func (s *Supervisor) Stop() {
	close(s.done)
}

func (s *Supervisor) serve(done chan struct{}) {
	logger := grohl.NewContext(grohl.Data{"ns": "Supervisor"})

	spooler := &Spooler{
		Size:    s.SpoolSize,
		Timeout: s.SpoolTimeout,
	}
	spoolIn := make(chan *FileData, s.SpoolSize*10)
	spoolOut := make(chan []*FileData, supervisorSpoolOutSize)
	go spooler.Spool(spoolIn, spoolOut)
	defer close(spoolIn)

	readers := NewFileReaderCollection()
	s.startFileReaders(spoolIn, readers)

	// A chunk that failed to send is pushed back onto retryCh (after a
	// backoff delay) and read from at priority over spoolOut. Only one
	// chunk is ever in flight for retry at a time.
	retryCh := make(chan []*FileData, 1)

	globTicker := time.NewTicker(s.GlobRefresh)
	defer globTicker.Stop()

	for {
		var chunkToSend []*FileData
		select {
		case <-done:
			return
		case chunkToSend = <-retryCh:
			// Retrying a previous chunk.
		default:
			select {
			case <-done:
				return
			case chunkToSend = <-retryCh:
			case chunkToSend = <-spoolOut:
			case <-globTicker.C:
				// FUTURE: globbing could run in its own goroutine, provided it
				// had its own critical region.
				logger.Log(grohl.Data{"msg": "re-globbing", "files_tailed": readers.Len()})
				s.startFileReaders(spoolIn, readers)
			}
		}

		if chunkToSend == nil {
			continue
		}

		GlobalStatistics.SetLinesBuffered(len(spoolIn))
		GlobalStatistics.SetChunksBuffered(len(spoolOut))

		if err := s.sendChunk(chunkToSend); err != nil {
			sendFailuresTotal.Inc()
			delay := s.backoff.Next()
			logger.Report(err, grohl.Data{"msg": "failed to send chunk", "resolution": "retrying", "delay": delay.String()})
			go func(chunk []*FileData) {
				<-time.After(delay)
				retryCh <- chunk
			}(chunkToSend)
			continue
		}

		GlobalStatistics.SetLastSendTime(time.Now())
		s.backoff.Reset()
		if err := s.acknowledgeChunk(chunkToSend); err != nil {
			snapshotFailuresTotal.Inc()
			// The chunk has already been sent successfully; retrying would
			// create duplicates. Report and assume the next acknowledgement
			// succeeds.
			logger.Report(err, grohl.Data{"msg": "failed to snapshot bookmarks"})
		}
	}
}

func (s *Supervisor) sendChunk(chunk []*FileData) error {
	lines := make([]client.Data, 0, len(chunk))
	for _, fileData := range chunk {
		lines = append(lines, fileData.Data)
	}

	for _, c := range s.clients {
		if err := c.Send(lines); err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) acknowledgeChunk(chunk []*FileData) error {
	marks := make([]FileBookmark, 0, len(chunk))
	for _, fileData := range chunk {
		marks = append(marks, FileBookmark{FilePath: fileData.Data["_file"], Bookmark: fileData.Bookmark})
	}
	return s.snapshotter.SetBookmarks(marks)
}

// startFileReaders globs the paths in each InputConfiguration, making
// sure a FileReader has been started for each match.
func (s *Supervisor) startFileReaders(spoolIn chan *FileData, readers *FileReaderCollection) {
	logger := grohl.NewContext(grohl.Data{"ns": "Supervisor", "fn": "startFileReaders"})

	for _, config := range s.files {
		for _, path := range config.Paths {
			matches, err := filepath.Glob(path)
			if err != nil {
				logger.Report(err, grohl.Data{"path": path, "msg": "failed to glob", "resolution": "skipping path"})
				continue
			}

			for _, match := range matches {
				if err := s.startFileReader(spoolIn, readers, match, config); err != nil {
					logger.Report(err, grohl.Data{"path": path, "match": match, "msg": "failed to start reader", "resolution": "skipping file"})
				}
			}
		}
	}
}

// startFileReader starts an individual file reader at a given path, if
// one isn't already running.
func (s *Supervisor) startFileReader(spoolIn chan *FileData, readers *FileReaderCollection, filePath string, config InputConfiguration) error {
	if readers.Get(filePath) != nil {
		return nil
	}

	bookmark, err := s.snapshotter.Bookmark(filePath)
	if err != nil {
		return err
	}

	enc, err := config.ResolveEncoding()
	if err != nil {
		return err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return err
	}

	fields := make(map[string]string, len(config.Fields)+1)
	for k, v := range config.Fields {
		fields[k] = v
	}
	fields["_file"] = filePath

	reader, err := NewFileReader(file, fields, enc, config.ReaderOptions(), bookmark)
	if err != nil {
		file.Close()
		return err
	}

	readers.Set(filePath, reader)
	GlobalStatistics.SetFileStatus(filePath, fileStatusReading)

	go func() {
		s.runFileReader(spoolIn, reader)

		// When the reader is deleted from the collection, it's eligible to
		// be recreated when glob runs again.
		readers.Delete(filePath)
	}()

	return nil
}

// runFileReader reads from a FileReader until EOF is reached.
func (s *Supervisor) runFileReader(spoolIn chan *FileData, reader *FileReader) {
	logger := grohl.NewContext(grohl.Data{"ns": "Supervisor", "fn": "runFileReader", "file": reader.FilePath()})
	defer reader.Close()

	lastBookmark := reader.Bookmark()
	for {
		fileData, err := reader.ReadLine()
		if err == io.EOF {
			logger.Log(grohl.Data{"status": "EOF", "resolution": "closing file"})
			GlobalStatistics.SetFileStatus(reader.FilePath(), fileStatusEof)
			break
		} else if err != nil {
			logger.Report(err, grohl.Data{"msg": "failed to completely read file", "resolution": "closing file"})
			GlobalStatistics.SetFileStatus(reader.FilePath(), fileStatusClosed)
			break
		}

		GlobalStatistics.SetFileBookmark(reader.FilePath(), fileData.Bookmark)
		spoolIn <- fileData
		lastBookmark = fileData.Bookmark
	}

	// Wait until our last bookmark has been snapshotted, so a future
	// reader for this path doesn't repeat lines.
	for {
		snapshotted, err := s.snapshotter.Bookmark(reader.FilePath())
		if err != nil {
			logger.Report(err, grohl.Data{"msg": "failed to read snapshotted bookmark", "resolution": "retrying"})
		} else if snapshotted.Position >= lastBookmark.Position {
			GlobalStatistics.SetFileSnapshotBookmark(reader.FilePath(), snapshotted)
			break
		}

		<-time.After(1 * time.Second)
	}
}
