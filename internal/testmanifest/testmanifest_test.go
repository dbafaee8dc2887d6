package testmanifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mesonpp/mpp/internal/backend"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	tests := []backend.Test{
		{Name: "unit_basic", Exe: "sub/unit_basic", Arguments: []string{"-v", "--fast"}, XFail: false},
		{Name: "unit_flaky", Exe: "sub/unit_flaky", Arguments: nil, XFail: true},
	}

	data := Serialize(tests)
	got, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if diff := cmp.Diff(tests, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializePrefixesBareExeNames(t *testing.T) {
	tests := []backend.Test{{Name: "t", Exe: "t", Arguments: nil, XFail: false}}
	got, err := Deserialize(Serialize(tests))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got) != 1 || got[0].Exe != "./t" {
		t.Fatalf("got %#v, want Exe %q", got, "./t")
	}
}

func TestDeserializeRejectsBadHeader(t *testing.T) {
	_, err := Deserialize([]byte("SERIAL_VERSION:99\n"))
	if err == nil {
		t.Fatalf("Deserialize accepted an unsupported header")
	}
}

func TestDeserializeRejectsUnterminatedTest(t *testing.T) {
	_, err := Deserialize([]byte("SERIAL_VERSION:0\nBEGIN_TEST\n  name:t\n"))
	if err == nil {
		t.Fatalf("Deserialize accepted an unterminated BEGIN_TEST block")
	}
}

func TestDeserializeRejectsFieldOutsideBlock(t *testing.T) {
	_, err := Deserialize([]byte("SERIAL_VERSION:0\n  name:t\n"))
	if err == nil {
		t.Fatalf("Deserialize accepted a field outside BEGIN_TEST/END_TEST")
	}
}
