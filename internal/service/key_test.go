package service

import (
	"strings"
	"testing"
)

func TestBuildObjectKey(t *testing.T) {
	key := BuildObjectKey(42, "photo.JPG")
	if !strings.HasPrefix(key, "42/uploads/") {
		t.Fatalf("key %q missing owner namespace", key)
	}
	if !strings.HasSuffix(key, ".JPG") {
		t.Fatalf("key %q should keep the extension", key)
	}

	other := BuildObjectKey(42, "photo.JPG")
	if key == other {
		t.Fatal("two uploads of the same name must get distinct keys")
	}

	if !strings.HasSuffix(BuildObjectKey(1, "Makefile"), ".bin") {
		t.Fatal("extensionless names must default to .bin")
	}
}

func TestKeyOwnedBy(t *testing.T) {
	if !KeyOwnedBy(42, "42/uploads/abc.bin") {
		t.Fatal("owner's key rejected")
	}
	if KeyOwnedBy(42, "7/uploads/abc.bin") {
		t.Fatal("foreign key accepted")
	}
	// Prefix must match a whole path segment.
	if KeyOwnedBy(4, "42/uploads/abc.bin") {
		t.Fatal("id 4 must not own keys under 42/")
	}
	if KeyOwnedBy(42, "42") {
		t.Fatal("bare id without segment separator accepted")
	}
}

func TestTotalParts(t *testing.T) {
	cases := []struct {
		size int64
		want int
	}{
		{0, 0},
		{1, 1},
		{PartSize, 1},
		{PartSize + 1, 2},
		{12 * 1024 * 1024, 3},
		{3 * PartSize, 3},
	}
	for _, c := range cases {
		if got := TotalParts(c.size); got != c.want {
			t.Errorf("TotalParts(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}
