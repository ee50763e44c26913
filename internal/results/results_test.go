package results

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

func TestDeliver(t *testing.T) {
	scratch := t.TempDir()
	final := t.TempDir()

	writeResult(t, scratch, "netperfmeter_1_vector_2026-08-25T00:00:00Z.vec.bz2")
	writeResult(t, scratch, "netperfmeter_1_scalar_2026-08-25T00:00:00Z.sca.bz2")
	writeResult(t, scratch, "netperfmeter_2_vector_2026-08-25T00:00:00Z.vec.bz2")

	store := &Store{ScratchDir: scratch, FinalDir: final}

	installed, err := store.Deliver(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if installed != 2 {
		t.Fatalf("installed = %d, want 2", installed)
	}

	// Instance 1 files moved, instance 2 files untouched.
	assertExists(t, filepath.Join(final, "netperfmeter_1_vector_2026-08-25T00:00:00Z.vec.bz2"))
	assertExists(t, filepath.Join(final, "netperfmeter_1_scalar_2026-08-25T00:00:00Z.sca.bz2"))
	assertExists(t, filepath.Join(scratch, "netperfmeter_2_vector_2026-08-25T00:00:00Z.vec.bz2"))
	assertMissing(t, filepath.Join(scratch, "netperfmeter_1_vector_2026-08-25T00:00:00Z.vec.bz2"))
}

func TestDeliverCompressed(t *testing.T) {
	scratch := t.TempDir()
	final := t.TempDir()

	name := "netperfmeter_5_vector_2026-08-25T00:00:00Z.vec.bz2"
	writeResult(t, scratch, name)

	store := &Store{ScratchDir: scratch, FinalDir: final, Compress: true}

	installed, err := store.Deliver(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if installed != 1 {
		t.Fatalf("installed = %d, want 1", installed)
	}

	assertMissing(t, filepath.Join(scratch, name))
	assertMissing(t, filepath.Join(final, name))

	f, err := os.Open(filepath.Join(final, name+".xz"))
	if err != nil {
		t.Fatalf("compressed result not installed: %v", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		t.Fatalf("not an xz stream: %v", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(data) != name {
		t.Fatalf("content = %q, want %q", data, name)
	}
}

func TestDeliverRetriedCompressedFile(t *testing.T) {
	scratch := t.TempDir()
	final := t.TempDir()

	// A failed install leaves an already-compressed file in the scratch
	// directory. The retry must deliver it unchanged, not compress it again.
	name := "netperfmeter_7_vector_2026-08-25T00:00:00Z.vec.bz2.xz"
	writeResult(t, scratch, name)

	store := &Store{ScratchDir: scratch, FinalDir: final, Compress: true}

	installed, err := store.Deliver(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if installed != 1 {
		t.Fatalf("installed = %d, want 1", installed)
	}

	assertExists(t, filepath.Join(final, name))
	assertMissing(t, filepath.Join(final, name+".xz"))
	assertMissing(t, filepath.Join(scratch, name))

	data, err := os.ReadFile(filepath.Join(final, name))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != name {
		t.Fatalf("content changed: %q", data)
	}
}

func TestDeliverNothingPending(t *testing.T) {
	store := &Store{ScratchDir: t.TempDir(), FinalDir: t.TempDir()}

	installed, err := store.Deliver(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if installed != 0 {
		t.Fatalf("installed = %d, want 0", installed)
	}
}

func TestInstallFileLeavesNoTempFile(t *testing.T) {
	scratch := t.TempDir()
	final := t.TempDir()

	path := filepath.Join(scratch, "result")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := installFile(path, final); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := os.ReadDir(final)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file %s left behind", e.Name())
		}
	}
	assertExists(t, filepath.Join(final, "result"))
	assertMissing(t, path)
}

// Writes a result file whose content is its own name.
func writeResult(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be gone", path)
	}
}
