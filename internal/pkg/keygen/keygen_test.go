package keygen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// installFakeTool writes an executable shell script named toolName onto a
// directory prepended to PATH for the duration of the test, echoing output
// for each subcommand it's invoked with.
func installFakeTool(t *testing.T, toolName, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI tool script is a POSIX shell script")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, toolName)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("writing fake %s: %v", toolName, err)
	}

	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestGeneratePrivateKey(t *testing.T) {
	installFakeTool(t, "wg", `
case "$1" in
  genkey) echo "fake-private-key" ;;
  *) exit 1 ;;
esac
`)

	tool := NewCLIKeyTool()
	key, err := tool.GeneratePrivateKey(context.Background(), false)
	if err != nil {
		t.Fatalf("GeneratePrivateKey() error = %v", err)
	}
	if key != "fake-private-key" {
		t.Errorf("GeneratePrivateKey() = %q, want fake-private-key", key)
	}
}

func TestGeneratePrivateKeyAmneziaUsesAwg(t *testing.T) {
	installFakeTool(t, "awg", `
case "$1" in
  genkey) echo "amnezia-private-key" ;;
  *) exit 1 ;;
esac
`)

	tool := NewCLIKeyTool()
	key, err := tool.GeneratePrivateKey(context.Background(), true)
	if err != nil {
		t.Fatalf("GeneratePrivateKey(amnezia) error = %v", err)
	}
	if key != "amnezia-private-key" {
		t.Errorf("GeneratePrivateKey(amnezia) = %q, want amnezia-private-key", key)
	}
}

func TestGeneratePresharedKey(t *testing.T) {
	installFakeTool(t, "wg", `
case "$1" in
  genpsk) echo "fake-psk" ;;
  *) exit 1 ;;
esac
`)

	tool := NewCLIKeyTool()
	psk, err := tool.GeneratePresharedKey(context.Background(), false)
	if err != nil {
		t.Fatalf("GeneratePresharedKey() error = %v", err)
	}
	if psk != "fake-psk" {
		t.Errorf("GeneratePresharedKey() = %q, want fake-psk", psk)
	}
}

func TestDerivePublicKeyReadsStdin(t *testing.T) {
	installFakeTool(t, "wg", `
case "$1" in
  pubkey) read priv; echo "pub-for-$priv" ;;
  *) exit 1 ;;
esac
`)

	tool := NewCLIKeyTool()
	pub, err := tool.DerivePublicKey(context.Background(), false, "some-private-key")
	if err != nil {
		t.Fatalf("DerivePublicKey() error = %v", err)
	}
	if pub != "pub-for-some-private-key" {
		t.Errorf("DerivePublicKey() = %q, want pub-for-some-private-key", pub)
	}
}

func TestGeneratePrivateKeyCommandFailure(t *testing.T) {
	installFakeTool(t, "wg", `exit 1`)

	tool := NewCLIKeyTool()
	if _, err := tool.GeneratePrivateKey(context.Background(), false); err == nil {
		t.Error("GeneratePrivateKey() error = nil, want ErrWGKeygenFailed when the CLI exits non-zero")
	}
}
