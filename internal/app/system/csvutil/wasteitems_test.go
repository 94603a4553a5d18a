package csvutil

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/civickey/civickey/internal/app/system/validators"
)

func TestParseWasteItems_WithHeader(t *testing.T) {
	in := "\ufeffname_fr,name_en,bin_id,note_fr,note_en,keywords\n" +
		"Pile,Battery,ecocentre,Apportez à l'écocentre,Bring to the ecocentre,piles;batterie\n" +
		"Journal,Newspaper,recyclage,,,\n"

	items, err := ParseWasteItems(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseWasteItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	pile := items[0]
	if pile.Name.FR != "Pile" || pile.Name.EN != "Battery" || pile.BinID != "ecocentre" {
		t.Errorf("item 0 = %+v", pile)
	}
	if len(pile.Keywords) != 2 || pile.Keywords[1] != "batterie" {
		t.Errorf("keywords = %v", pile.Keywords)
	}
	if items[1].SortOrder != 1 {
		t.Errorf("SortOrder = %d, want 1", items[1].SortOrder)
	}
}

func TestParseWasteItems_NoHeaderShortRows(t *testing.T) {
	items, err := ParseWasteItems(strings.NewReader("Carton,,recyclage\n\n,,\n"))
	if err != nil {
		t.Fatalf("ParseWasteItems: %v", err)
	}
	if len(items) != 1 || items[0].Name.FR != "Carton" || items[0].Name.EN != "" {
		t.Errorf("items = %+v", items)
	}
}

func TestParseWasteItems_RejectsBadRows(t *testing.T) {
	in := "nom,name_en,bin_id\n" +
		"Pile,Battery,ecocentre\n" +
		",,compost\n" +
		"Journal,Newspaper,\n"

	items, err := ParseWasteItems(strings.NewReader(in))
	if items != nil {
		t.Errorf("items should be nil on error, got %d", len(items))
	}
	var probs validators.Problems
	if !errors.As(err, &probs) {
		t.Fatalf("err = %v, want validators.Problems", err)
	}
	want := []string{"line 3: name is required", "line 4: bin_id is required"}
	if len(probs) != len(want) {
		t.Fatalf("problems = %v, want %v", probs, want)
	}
	for i := range want {
		if probs[i] != want[i] {
			t.Errorf("problem %d = %q, want %q", i, probs[i], want[i])
		}
	}
}

func TestParseWasteItems_CapsReportedRows(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		b.WriteString(",,compost\n")
	}
	_, err := ParseWasteItems(strings.NewReader(b.String()))
	var probs validators.Problems
	if !errors.As(err, &probs) {
		t.Fatalf("err = %v, want validators.Problems", err)
	}
	if len(probs) != maxReported+1 {
		t.Fatalf("got %d problems, want %d", len(probs), maxReported+1)
	}
	if probs[maxReported] != "and 3 more invalid rows" {
		t.Errorf("summary = %q", probs[maxReported])
	}
}

func TestParseWasteItems_TooManyRows(t *testing.T) {
	var b strings.Builder
	for i := 0; i <= MaxRows; i++ {
		fmt.Fprintf(&b, "Item %d,,compost\n", i)
	}
	_, err := ParseWasteItems(strings.NewReader(b.String()))
	if err == nil || !strings.Contains(err.Error(), "too many rows") {
		t.Fatalf("err = %v, want too many rows", err)
	}
}
