package linebookmark

import (
	"io"
	"os"

	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
)

// FileData is one line read from a tracked file, tagged with the
// bookmark reading should resume from to continue after it.
type FileData struct {
	client.Data
	Bookmark LineBookmark
}

// FileReader tails a single file through a BookmarkingLineReader,
// resuming from whatever bookmark it was constructed with.
type FileReader struct {
	File   *os.File
	Fields map[string]string

	reader       *BookmarkingLineReader
	lastBookmark LineBookmark
}

// NewFileReader opens a BookmarkingLineReader over file, resuming from
// resumeFrom (pass Start to read from the beginning, detecting and
// skipping any preamble).
func NewFileReader(file *os.File, fields map[string]string, enc Encoding, options Options, resumeFrom LineBookmark) (*FileReader, error) {
	reader, err := NewBookmarkingLineReader(NewFileByteSource(file), enc, options)
	if err != nil {
		return nil, err
	}
	if err := reader.ResumeFromBookmark(resumeFrom); err != nil {
		return nil, err
	}

	return &FileReader{
		File:         file,
		Fields:       fields,
		reader:       reader,
		lastBookmark: resumeFrom,
	}, nil
}

// FilePath is the path the underlying file was opened from.
func (h *FileReader) FilePath() string {
	return h.File.Name()
}

// Bookmark returns the bookmark this reader would resume from if
// recreated right now: the bookmark for the line right after the last
// one ReadLine returned.
func (h *FileReader) Bookmark() LineBookmark {
	return h.lastBookmark
}

// ReadLine reads the next complete, terminated line, returning io.EOF
// once the file has no more of them.
//
// A trailing line with no terminator (LineEnding == None) is never
// returned: the file may still be appended to, and re-reading it from
// scratch once it has grown is simpler than stitching together a split
// read. Bookmark is left pointing at the start of that unterminated
// line, so reopening the file later rereads it whole.
func (h *FileReader) ReadLine() (*FileData, error) {
	line, err := h.reader.ReadDetailedLine()
	if err != nil {
		return nil, err
	}
	if line == nil || line.LineEnding == None {
		return nil, io.EOF
	}

	bytesConsumed := line.ReadNextBookmark().Position - line.BeforeReadingBookmark.Position
	if line.BeforeReadingBookmark.IsStart() {
		bytesConsumed = line.ReadNextBookmark().Position - line.StartPosition
	}
	linesReadTotal.WithLabelValues(h.FilePath()).Inc()
	bytesReadTotal.WithLabelValues(h.FilePath()).Add(float64(bytesConsumed))

	h.lastBookmark = line.ReadNextBookmark()

	return &FileData{
		Data:     h.buildDataWithLine(line.TextWithoutLineEnding),
		Bookmark: h.lastBookmark,
	}, nil
}

func (h *FileReader) Close() error {
	return h.reader.Close()
}

func (h *FileReader) buildDataWithLine(line string) client.Data {
	var data client.Data
	if h.Fields != nil {
		data = make(client.Data, len(h.Fields)+1)
	} else {
		data = make(client.Data, 1)
	}
	data["line"] = line

	for k, v := range h.Fields {
		data[k] = v
	}

	return data
}
