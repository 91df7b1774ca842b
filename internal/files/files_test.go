package files

import (
	"context"
	"testing"
)

func TestNewFileStorage(t *testing.T) {
	s, err := NewFileStorage(Config{Url: "127.0.0.1:9000", Login: "l", Password: "p", Bucket: "submissions"})
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	if s.Bucket != "submissions" || s.ReportBucket != "" {
		t.Fatalf("Unexpected buckets: %+v", s)
	}
}

func TestNewFileStorage_InvalidEndpoint(t *testing.T) {
	if _, err := NewFileStorage(Config{Url: "http://127.0.0.1:9000/path"}); err == nil {
		t.Fatalf("Expected error for endpoint with scheme and path")
	}
}

func TestPublishReport_DisabledWithoutBucket(t *testing.T) {
	s, err := NewFileStorage(Config{Url: "127.0.0.1:9000", Login: "l", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.PublishReport(context.Background(), t.TempDir(), "c/p/C++"); err != nil {
		t.Fatalf("PublishReport without report bucket must be a no-op: %v", err)
	}
}
