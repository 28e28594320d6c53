package linebookmark

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/treetopinnovationab/BookmarkingStreamReader/client"
)

func TestSupervisorSmokeTest(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "linebookmarkd")
	if err != nil {
		t.Fatal(err)
	}
	defer tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.Write([]byte("line1\n"))
	if err != nil {
		t.Fatal(err)
	}

	testClient := &client.TestClient{}
	snapshotter := &MemorySnapshotter{}
	supervisor := NewSupervisor(
		[]InputConfiguration{
			{
				Paths:  []string{tmpFile.Name()},
				Fields: map[string]string{"field1": "value1"},
			},
		},
		[]client.Client{testClient},
		snapshotter,
	)
	supervisor.SpoolTimeout = 50 * time.Millisecond
	supervisor.GlobRefresh = 20 * time.Second

	supervisor.Start()
	defer supervisor.Stop()

	// Spool timeout, plus some buffer
	<-time.After(75 * time.Millisecond)

	if len(testClient.DataSent) != 1 {
		t.Fatalf("Expected %d message, but got %d", 1, len(testClient.DataSent))
	}
	if testClient.DataSent[0]["line"] != "line1" {
		t.Fatalf("Expected line = %q, but got %q", "line1", testClient.DataSent[0]["line"])
	}
	if testClient.DataSent[0]["field1"] != "value1" {
		t.Fatalf("Expected field1 = %q, but got %q", "value1", testClient.DataSent[0]["field1"])
	}

	// Check that file was snapshotted
	bookmark, err := snapshotter.Bookmark(tmpFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	if bookmark.Position != 6 {
		t.Fatalf("Expected bookmark.Position = %d, but got %d", 6, bookmark.Position)
	}
}

// Supervisor should continually reopen files after hitting EOF to check for
// more data.
func TestSupervisorReopensAfterEOF(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "linebookmarkd")
	if err != nil {
		t.Fatal(err)
	}
	defer tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	testClient := &client.TestClient{}
	snapshotter := &MemorySnapshotter{}
	supervisor := NewSupervisor(
		[]InputConfiguration{
			{
				Paths:  []string{tmpFile.Name()},
				Fields: map[string]string{"field1": "value1"},
			},
		},
		[]client.Client{testClient},
		snapshotter,
	)
	supervisor.SpoolTimeout = 50 * time.Millisecond
	supervisor.GlobRefresh = 50 * time.Millisecond

	supervisor.Start()
	defer supervisor.Stop()

	// Spool timeout, plus some buffer
	<-time.After(75 * time.Millisecond)

	// Now, after the file has been closed because it hit EOF, write some data
	// to it.
	_, err = tmpFile.Write([]byte("line1\n"))
	if err != nil {
		t.Fatal(err)
	}

	// Glob refresh, plus some buffer for the reader and spooler to catch up.
	<-time.After(250 * time.Millisecond)

	if len(testClient.DataSent) != 1 {
		t.Fatalf("Expected %d message, but got %d", 1, len(testClient.DataSent))
	}
	if testClient.DataSent[0]["line"] != "line1" {
		t.Fatalf("Expected line = %q, but got %q", "line1", testClient.DataSent[0]["line"])
	}
	if testClient.DataSent[0]["field1"] != "value1" {
		t.Fatalf("Expected field1 = %q, but got %q", "value1", testClient.DataSent[0]["field1"])
	}
}

func TestSupervisorRetryServerFailure(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "linebookmarkd")
	if err != nil {
		t.Fatal(err)
	}
	defer tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.Write([]byte("line1\n"))
	if err != nil {
		t.Fatal(err)
	}

	// Initially, simulate a client error.
	testClient := &client.TestClient{}
	testClient.Error = fmt.Errorf("something went wrong")

	snapshotter := &MemorySnapshotter{}
	supervisor := NewSupervisor(
		[]InputConfiguration{
			{
				Paths:  []string{tmpFile.Name()},
				Fields: map[string]string{"field1": "value1"},
			},
		},
		[]client.Client{testClient},
		snapshotter,
	)
	supervisor.SpoolTimeout = 50 * time.Millisecond
	supervisor.GlobRefresh = 20 * time.Second
	supervisor.backoff = ExponentialBackoff{Minimum: 10 * time.Millisecond, Maximum: 50 * time.Millisecond}

	supervisor.Start()
	defer supervisor.Stop()

	<-time.After(75 * time.Millisecond)

	// OK, things magically resolved.
	testClient.Error = nil
	<-time.After(150 * time.Millisecond)

	// Make sure the message was retried.
	if len(testClient.DataSent) != 1 {
		t.Fatalf("Expected %d message, but got %d", 1, len(testClient.DataSent))
	}
	if testClient.DataSent[0]["line"] != "line1" {
		t.Fatalf("Expected line = %q, but got %q", "line1", testClient.DataSent[0]["line"])
	}
	if testClient.DataSent[0]["field1"] != "value1" {
		t.Fatalf("Expected field1 = %q, but got %q", "value1", testClient.DataSent[0]["field1"])
	}

	// Check that file was snapshotted.
	bookmark, err := snapshotter.Bookmark(tmpFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	if bookmark.Position != 6 {
		t.Fatalf("Expected bookmark.Position = %d, but got %d", 6, bookmark.Position)
	}
}

func TestSupervisorFansOutToAllClients(t *testing.T) {
	tmpFile, err := ioutil.TempFile("", "linebookmarkd")
	if err != nil {
		t.Fatal(err)
	}
	defer tmpFile.Close()
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.Write([]byte("line1\n"))
	if err != nil {
		t.Fatal(err)
	}

	clientA := &client.TestClient{}
	clientB := &client.TestClient{}
	snapshotter := &MemorySnapshotter{}
	supervisor := NewSupervisor(
		[]InputConfiguration{
			{Paths: []string{tmpFile.Name()}},
		},
		[]client.Client{clientA, clientB},
		snapshotter,
	)
	supervisor.SpoolTimeout = 50 * time.Millisecond
	supervisor.GlobRefresh = 20 * time.Second

	supervisor.Start()
	defer supervisor.Stop()

	<-time.After(75 * time.Millisecond)

	if len(clientA.DataSent) != 1 {
		t.Fatalf("Expected clientA to receive %d message, but got %d", 1, len(clientA.DataSent))
	}
	if len(clientB.DataSent) != 1 {
		t.Fatalf("Expected clientB to receive %d message, but got %d", 1, len(clientB.DataSent))
	}
}
