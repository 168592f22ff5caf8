package enums

import "testing"

func TestParseApparelSize(t *testing.T) {
	size, err := ParseApparelSize("M")
	if err != nil {
		t.Fatalf("expected M to parse, got %v", err)
	}
	if size != ApparelSizeM {
		t.Fatalf("expected ApparelSizeM, got %s", size)
	}

	if _, err := ParseApparelSize("XXXL"); err == nil {
		t.Fatal("expected invalid size to fail")
	}
	if _, err := ParseApparelSize("m"); err == nil {
		t.Fatal("sizes are uppercase; lowercase should fail")
	}
}

func TestApparelSizeRankOrdering(t *testing.T) {
	prev := -1
	for _, size := range AllApparelSizes() {
		if size.Rank() <= prev {
			t.Fatalf("ladder not strictly increasing at %s", size)
		}
		prev = size.Rank()
	}
	if ApparelSize("??").Rank() != len(AllApparelSizes()) {
		t.Fatal("unknown sizes should sort last")
	}
}

func TestParseRarity(t *testing.T) {
	rarity, err := ParseRarity("legendary")
	if err != nil {
		t.Fatalf("expected legendary to parse, got %v", err)
	}
	if rarity != RarityLegendary {
		t.Fatalf("expected RarityLegendary, got %s", rarity)
	}
	if !rarity.IsValid() {
		t.Fatal("parsed rarity should be valid")
	}
	if _, err := ParseRarity("mythic"); err == nil {
		t.Fatal("expected invalid rarity to fail")
	}
}
