package apk

import (
	"archive/zip"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dexbridge/dexscan/internal/bridge"
	"github.com/dexbridge/dexscan/internal/dex"
	"github.com/dexbridge/dexscan/internal/dex/dextest"
)

type zipEntry struct {
	name string
	data []byte
}

// writeAPK writes a zip with the given entries, in order, to a temp
// file and returns its path. Entry order matters: shard enumeration
// order decides which duplicate class wins.
func writeAPK(t *testing.T, entries []zipEntry) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.apk")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("zip create %s: %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("zip write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return path
}

func singleClassShard(t *testing.T, name, method string) []byte {
	t.Helper()
	b := dextest.NewBuilder()
	m := b.Method(name, method, "V")
	b.Class(name, 0x1, dextest.ClassData(0, 0, []dextest.EncodedMethod{{Index: m, Flags: 0x9}}, nil))
	return b.Build()
}

func TestExtractClassesMissingFile(t *testing.T) {
	_, err := ExtractClasses(context.Background(), filepath.Join(t.TempDir(), "absent.apk"), Options{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestExtractClassesNoDexEntries(t *testing.T) {
	path := writeAPK(t, []zipEntry{
		{"AndroidManifest.xml", []byte("placeholder")},
		{"res/layout/main.xml", []byte("placeholder")},
	})
	_, err := ExtractClasses(context.Background(), path, Options{})
	if !errors.Is(err, ErrNoDexEntries) {
		t.Errorf("err = %v, want ErrNoDexEntries", err)
	}
}

func TestExtractClassesBadMagicAborts(t *testing.T) {
	b := dextest.NewBuilder()
	b.Magic = []byte("zip\n035\x00")
	b.Class("Lcom/a/B;", 0x1, nil)

	path := writeAPK(t, []zipEntry{
		{"classes.dex", singleClassShard(t, "Lcom/a/Good;", "fine")},
		{"classes2.dex", b.Build()},
	})
	_, err := ExtractClasses(context.Background(), path, Options{})
	if !errors.Is(err, dex.ErrMalformedFormat) {
		t.Errorf("err = %v, want dex.ErrMalformedFormat", err)
	}
}

func TestExtractClassesMultiShard(t *testing.T) {
	path := writeAPK(t, []zipEntry{
		{"classes.dex", singleClassShard(t, "Lcom/a/B;", "fromShard1")},
		{"classes2.dex", singleClassShard(t, "Lcom/a/B;", "fromShard2")},
		{"classes3.dex", singleClassShard(t, "Lcom/other/C;", "other")},
		{"lib/arm64-v8a/libapp.so", []byte("not dex")},
	})

	for _, workers := range []int{0, 4} {
		res, err := ExtractClasses(context.Background(), path, Options{Workers: workers})
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if res.Shards != 3 {
			t.Errorf("workers=%d: Shards = %d, want 3", workers, res.Shards)
		}
		if len(res.Classes) != 3 {
			t.Fatalf("workers=%d: got %d classes, want 3 before filtering", workers, len(res.Classes))
		}
		if len(res.Errors) != 0 {
			t.Errorf("workers=%d: class errors: %v", workers, res.Errors)
		}

		// Shard order is preserved regardless of decode concurrency,
		// so dedup keeps the first shard's copy of com.a.B.
		filtered := bridge.Filter(res.Classes, nil)
		if len(filtered) != 2 {
			t.Fatalf("workers=%d: filtered to %d classes, want 2", workers, len(filtered))
		}
		if filtered[0].Name != "com.a.B" || filtered[0].Methods[0].Name != "fromShard1" {
			t.Errorf("workers=%d: first-shard-wins violated: %+v", workers, filtered[0])
		}
	}
}

func TestExtractClassesProgress(t *testing.T) {
	path := writeAPK(t, []zipEntry{
		{"classes.dex", singleClassShard(t, "Lcom/a/B;", "m")},
		{"classes2.dex", singleClassShard(t, "Lcom/a/C;", "m")},
	})

	var fractions []float64
	res, err := ExtractClasses(context.Background(), path, Options{
		Progress: func(frac float64, msg string) {
			if msg == "" {
				t.Error("empty progress message")
			}
			fractions = append(fractions, frac)
		},
	})
	if err != nil {
		t.Fatalf("ExtractClasses: %v", err)
	}
	if res.Shards != 2 {
		t.Errorf("Shards = %d, want 2", res.Shards)
	}
	if len(fractions) != 3 {
		t.Fatalf("got %d progress reports, want 3 (two shards + completion)", len(fractions))
	}
	for i, f := range fractions {
		if f < 0 || f > 1 {
			t.Errorf("fraction %d = %v out of range", i, f)
		}
		if i > 0 && f < fractions[i-1] {
			t.Errorf("fractions not monotonic: %v", fractions)
		}
	}
	if fractions[len(fractions)-1] != 1.0 {
		t.Errorf("final fraction = %v, want 1.0", fractions[len(fractions)-1])
	}
}

func TestExtractClassesCancelled(t *testing.T) {
	path := writeAPK(t, []zipEntry{
		{"classes.dex", singleClassShard(t, "Lcom/a/B;", "m")},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ExtractClasses(ctx, path, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestExtractClassesSurfacesClassErrors(t *testing.T) {
	b := dextest.NewBuilder()
	const cls = "Lcom/a/B;"
	ok := b.Method(cls, "fine", "V")
	b.Class(cls, 0x1, dextest.ClassData(0, 0, nil, []dextest.EncodedMethod{
		{Index: ok, Flags: 0x1},
		{Index: 9999, Flags: 0x1},
	}))

	path := writeAPK(t, []zipEntry{{"classes.dex", b.Build()}})
	res, err := ExtractClasses(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("ExtractClasses: %v", err)
	}
	if len(res.Errors) != 1 {
		t.Fatalf("got %d class errors, want 1: %v", len(res.Errors), res.Errors)
	}
	if len(res.Classes) != 1 || len(res.Classes[0].Methods) != 1 {
		t.Errorf("damaged class not emitted with its decoded prefix: %+v", res.Classes)
	}
}
