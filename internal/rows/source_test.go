package rows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleCSV = "apple,fruit,\"green apple, granny smith\"\nbanana,fruit,\nlonely\n"

var sampleRows = [][]string{
	{"apple", "fruit", "green apple, granny smith"},
	{"banana", "fruit", ""},
	{"lonely"},
}

func TestFileFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := File{Path: path}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRows) {
		t.Errorf("rows = %v, want %v", got, sampleRows)
	}
}

func TestFileFetch_Missing(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "nope.csv")}.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	got, err := HTTP{URL: srv.URL, Client: srv.Client()}.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(got, sampleRows) {
		t.Errorf("rows = %v, want %v", got, sampleRows)
	}
}

func TestHTTPFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := HTTP{URL: srv.URL, Client: srv.Client()}.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
