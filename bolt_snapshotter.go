package linebookmark

import (
	"encoding/binary"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

const boltSnapshotterBucket = "line_bookmarks"

// BoltSnapshotter persists bookmarks to a boltdb database, one 16-byte
// value (big-endian Position followed by big-endian CharIndex) per
// tracked file path.
type BoltSnapshotter struct {
	DB *bolt.DB
}

func (s *BoltSnapshotter) Bookmark(filePath string) (LineBookmark, error) {
	bm := Start

	err := s.DB.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltSnapshotterBucket))
		if bucket == nil {
			return nil
		}

		raw := bucket.Get([]byte(filePath))
		if len(raw) != 16 {
			return nil
		}

		bm = LineBookmark{
			Position:  int64(binary.BigEndian.Uint64(raw[0:8])),
			CharIndex: int64(binary.BigEndian.Uint64(raw[8:16])),
		}
		return nil
	})
	if err != nil {
		return Start, errors.Wrap(err, "linebookmark: reading bolt snapshot")
	}
	return bm, nil
}

func (s *BoltSnapshotter) SetBookmarks(marks []FileBookmark) error {
	err := s.DB.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(boltSnapshotterBucket))
		if err != nil {
			return err
		}

		for _, mark := range marks {
			raw := make([]byte, 16)
			binary.BigEndian.PutUint64(raw[0:8], uint64(mark.Bookmark.Position))
			binary.BigEndian.PutUint64(raw[8:16], uint64(mark.Bookmark.CharIndex))
			if err := bucket.Put([]byte(mark.FilePath), raw); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "linebookmark: writing bolt snapshot")
}
