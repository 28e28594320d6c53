package linebookmark

import (
	"sync"
)

// FileReaderCollection is a thread-safe mapping between a tailed file's
// path and the FileReader currently reading it. Supervisor consults it
// before starting a reader for a glob match, so a file already being
// tailed is never opened twice, and counts it to report how many files
// are actively in flight.
type FileReaderCollection struct {
	readers map[string]*FileReader
	lock    sync.RWMutex
}

// NewFileReaderCollection returns a ready-to-use, empty collection.
func NewFileReaderCollection() *FileReaderCollection {
	return &FileReaderCollection{readers: make(map[string]*FileReader)}
}

func (c *FileReaderCollection) Get(filePath string) *FileReader {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.readers[filePath]
}

func (c *FileReaderCollection) Delete(filePath string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.readers, filePath)
}

func (c *FileReaderCollection) Set(filePath string, reader *FileReader) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.readers[filePath] = reader
}

// Len reports how many files are currently being tailed.
func (c *FileReaderCollection) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.readers)
}
