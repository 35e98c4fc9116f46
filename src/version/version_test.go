package version

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	full := GetVersion()
	base := GetBaseVersion()
	if !strings.HasPrefix(full, base+".") {
		t.Fatalf("base version (%v) is not a prefix of the full version (%v)", base, full)
	}
	if strings.Count(full, ".") != 2 {
		t.Fatalf("full version should be major.minor.patch, got %v", full)
	}
}

func TestCompatible(t *testing.T) {
	if !Compatible(GetVersion()) || !Compatible(GetBaseVersion()+".99") {
		t.Fatal("versions sharing a base version should be compatible")
	}
	for _, v := range []string{"", GetBaseVersion(), "99.0.0", GetBaseVersion() + "1.0"} {
		if Compatible(v) {
			t.Fatalf("%q should not be compatible with %v", v, GetVersion())
		}
	}
}
