package nlp

import (
	"errors"
	"strings"
	"testing"
)

func TestExtractCustomerName_CustomerMarker(t *testing.T) {
	name, err := ExtractCustomerName("show orders for customer Sarah Connor")
	if err != nil {
		t.Fatal(err)
	}
	// "customer" outranks "for" even though "for" appears first.
	if name != "Sarah Connor" {
		t.Fatalf("name = %q, want Sarah Connor", name)
	}
}

func TestExtractCustomerName_ForMarker(t *testing.T) {
	name, err := ExtractCustomerName("orders for John Smith")
	if err != nil {
		t.Fatal(err)
	}
	if name != "John Smith" {
		t.Fatalf("name = %q, want John Smith", name)
	}
}

// Marker matching is case-insensitive but the extracted fragment keeps the
// original casing.
func TestExtractCustomerName_PreservesCase(t *testing.T) {
	name, err := ExtractCustomerName("Orders FOR John Smith")
	if err != nil {
		t.Fatal(err)
	}
	if name != "John Smith" {
		t.Fatalf("name = %q, want John Smith", name)
	}
}

func TestExtractCustomerName_FirstOccurrenceWins(t *testing.T) {
	name, err := ExtractCustomerName("for customer projects for Bob")
	if err != nil {
		t.Fatal(err)
	}
	if name != "projects for Bob" {
		t.Fatalf("name = %q, want remainder after first 'customer'", name)
	}
}

// Some runes change byte length under ToLower (Ⱥ U+023A is 2 bytes, ⱥ U+2C65
// is 3), so marker offsets must come from the original text, never from a
// lowered copy. A wrong offset here slices out of range and panics.
func TestExtractCustomerName_LengthChangingRunes(t *testing.T) {
	name, err := ExtractCustomerName("ȺȺȺȺȺȺ for Bob")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Bob" {
		t.Fatalf("name = %q, want Bob", name)
	}

	name, err = ExtractCustomerName("ȺȺ orders FOR customer Ⱥlice")
	if err != nil {
		t.Fatal(err)
	}
	if name != "Ⱥlice" {
		t.Fatalf("name = %q, want Ⱥlice", name)
	}
}

func TestExtractCustomerName_EmptyRemainder(t *testing.T) {
	if _, err := ExtractCustomerName("customer "); !errors.Is(err, ErrNoEntity) {
		t.Fatalf("err = %v, want ErrNoEntity for empty remainder", err)
	}
}

func TestExtractCustomerName_NoMarker(t *testing.T) {
	if _, err := ExtractCustomerName("show me everything"); !errors.Is(err, ErrNoEntity) {
		t.Fatalf("err = %v, want ErrNoEntity", err)
	}
}

// Once extracted, a fragment that carries no further marker passes through the
// splitting rule unchanged, so extraction cannot drift on repeated application.
func TestExtractCustomerName_StableFragment(t *testing.T) {
	name, err := ExtractCustomerName("orders for John Smith")
	if err != nil {
		t.Fatal(err)
	}
	lower := strings.ToLower(name)
	for _, marker := range nameMarkers {
		if strings.Contains(lower, marker) {
			t.Skipf("fragment %q still contains marker %q", name, marker)
		}
	}
	if trimmed := strings.TrimSpace(name); trimmed != name {
		t.Fatalf("fragment %q not trimmed", name)
	}
}
