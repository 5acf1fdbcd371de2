package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	r := Default()

	if r.ProtocolCount() == 0 {
		t.Fatal("embedded defaults should contain protocols")
	}
	if r.LockerCount() != 3 {
		t.Errorf("expected 3 lockers, got %d", r.LockerCount())
	}

	label, ok := r.ProtocolLabel("0x7a250d5630b4cf539739df2c5dacb4c659f2488d")
	if !ok {
		t.Fatal("Uniswap V2 router should be a known protocol")
	}
	if label != "Uniswap V2: Router" {
		t.Errorf("unexpected label: %s", label)
	}

	if !r.IsLocker("0x663a5c229c09b049e36dcc11a9b0d4a8eb9db214") {
		t.Error("Unicrypt should be a known locker")
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	r := Default()

	// Checksummed casing must match too
	if !r.IsProtocol("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D") {
		t.Error("checksummed router address should match")
	}
	if r.IsProtocol("0x0000000000000000000000000000000000000001") {
		t.Error("unknown address should not match")
	}
}

func TestNew_LowercasesKeys(t *testing.T) {
	r := New(
		map[string]string{"0xAbCd000000000000000000000000000000000001": "Test Protocol"},
		map[string]string{"0xAbCd000000000000000000000000000000000002": "Test Locker"},
	)

	if !r.IsProtocol("0xabcd000000000000000000000000000000000001") {
		t.Error("protocol key should be lowercased on load")
	}
	if !r.IsLocker("0xABCD000000000000000000000000000000000002") {
		t.Error("locker lookup should be case-insensitive")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")

	content := `{
		"protocols": {"0x1111000000000000000000000000000000000001": "Custom Router"},
		"lockers": {"0x2222000000000000000000000000000000000002": "Custom Locker"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	label, ok := r.ProtocolLabel("0x1111000000000000000000000000000000000001")
	if !ok || label != "Custom Router" {
		t.Errorf("unexpected protocol lookup: %q %v", label, ok)
	}
	if !r.IsLocker("0x2222000000000000000000000000000000000002") {
		t.Error("custom locker should be known")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/registry.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed file")
	}
}
