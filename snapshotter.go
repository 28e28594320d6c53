package linebookmark

import "sync"

// FileBookmark pairs a tracked file path with the bookmark reading
// should resume from.
type FileBookmark struct {
	FilePath string
	Bookmark LineBookmark
}

// Snapshotter persists the bookmark each tracked file has reached, so
// a restarted linebookmarkd resumes instead of re-reading from the
// start of every file.
type Snapshotter interface {
	// Bookmark returns the last persisted bookmark for filePath, or the
	// Start sentinel if none has been persisted yet.
	Bookmark(filePath string) (LineBookmark, error)

	SetBookmarks(marks []FileBookmark) error
}

// MemorySnapshotter is a Snapshotter backed by an in-memory map. Useful
// for tests and for running without durable state.
type MemorySnapshotter struct {
	mu    sync.RWMutex
	marks map[string]LineBookmark
}

func (s *MemorySnapshotter) Bookmark(filePath string) (LineBookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if bm, ok := s.marks[filePath]; ok {
		return bm, nil
	}
	return Start, nil
}

func (s *MemorySnapshotter) SetBookmarks(marks []FileBookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.marks == nil {
		s.marks = make(map[string]LineBookmark)
	}
	for _, mark := range marks {
		s.marks[mark.FilePath] = mark.Bookmark
	}
	return nil
}
