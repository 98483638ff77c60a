package bnd2

import (
	"errors"
	"reflect"
	"testing"
)

func TestEncodeDecodeImportsRoundTrip(t *testing.T) {
	imports := []ImportEntry{
		{Offset: 0x20, ID: 0x1001},
		{Offset: 0x10, ID: 0x1002},
	}
	encoded, err := EncodeImports(imports)
	if err != nil {
		t.Fatalf("EncodeImports: %v", err)
	}

	records, err := DecodeImports(encoded)
	if err != nil {
		t.Fatalf("DecodeImports: %v", err)
	}

	want := []ImportRecord{
		{Offset: 0x10, ID: 0x1002},
		{Offset: 0x20, ID: 0x1001},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("DecodeImports round trip = %+v, want %+v", records, want)
	}
}

func TestEncodeCombinedImportsSkipsEmptyResources(t *testing.T) {
	bundle := &Bundle{
		Entries: []ResourceEntry{
			{ID: 1, Imports: []ImportEntry{{Offset: 0, ID: 2}}},
			{ID: 2}, // no imports, must not appear in the output
		},
	}
	encoded, err := EncodeCombinedImports(bundle)
	if err != nil {
		t.Fatalf("EncodeCombinedImports: %v", err)
	}

	combined, err := DecodeCombinedImports(encoded)
	if err != nil {
		t.Fatalf("DecodeCombinedImports: %v", err)
	}
	if _, ok := combined[2]; ok {
		t.Error("resource with no imports present in combined imports map")
	}
	if records, ok := combined[1]; !ok || len(records) != 1 || records[0].ID != 2 {
		t.Errorf("combined[1] = %+v, want one record with id 2", records)
	}
}

func TestDecodeCombinedImportsRejectsDuplicateKey(t *testing.T) {
	yamlSrc := `
0x00000001:
  - 0x00000000: 0x2
0x00000001:
  - 0x00000004: 0x3
`
	if _, err := DecodeCombinedImports([]byte(yamlSrc)); !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("duplicate combined-imports key: err = %v, want ErrSidecarValidation", err)
	}
}

func TestDecodeImportsRejectsNonSequenceRoot(t *testing.T) {
	if _, err := DecodeImports([]byte("foo: bar\n")); !errors.Is(err, ErrSidecarValidation) {
		t.Errorf("non-sequence root: err = %v, want ErrSidecarValidation", err)
	}
}

func TestDecodeImportsEmptyDocument(t *testing.T) {
	records, err := DecodeImports([]byte(""))
	if err != nil {
		t.Fatalf("DecodeImports(empty): %v", err)
	}
	if records != nil {
		t.Errorf("DecodeImports(empty) = %v, want nil", records)
	}
}
