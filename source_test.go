package linebookmark

import (
	"io"
	"io/ioutil"
	"os"
	"testing"
)

func TestFileByteSourceReadSeekPositionLength(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "linebookmark-source")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write([]byte("hello world")); err != nil {
		t.Fatal(err)
	}
	if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
		t.Fatal(err)
	}

	source := NewFileByteSource(tmpFile)
	defer source.Close()

	length, err := source.Length()
	if err != nil {
		t.Fatal(err)
	}
	if length != int64(len("hello world")) {
		t.Fatalf("Length() = %d, want %d", length, len("hello world"))
	}

	buf := make([]byte, 5)
	n, err := source.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Fatalf("Read() = %q, want %q", string(buf[:n]), "hello")
	}

	pos, err := source.Position()
	if err != nil {
		t.Fatal(err)
	}
	if pos != 5 {
		t.Fatalf("Position() = %d, want 5", pos)
	}

	if err := source.Seek(6); err != nil {
		t.Fatal(err)
	}
	n, err = source.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "world" {
		t.Fatalf("Read() after Seek = %q, want %q", string(buf[:n]), "world")
	}
}

func TestOpenFileByteSourceMissingFile(t *testing.T) {
	if _, err := OpenFileByteSource("/nonexistent/linebookmark-source-path"); err == nil {
		t.Fatal("expected an error opening a nonexistent path")
	}
}
