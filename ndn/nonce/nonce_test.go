package nonce

import "testing"

func TestGeneratorProducesDistinctValues(t *testing.T) {
	g := NewGenerator()
	seen := make(map[uint32]bool)
	for i := 0; i < 1000; i++ {
		n := g.Next()
		if seen[n] {
			t.Fatalf("duplicate nonce %d after %d draws", n, i)
		}
		seen[n] = true
	}
}

func TestTwoGeneratorsLikelyDiffer(t *testing.T) {
	a := NewGenerator()
	b := NewGenerator()
	if a.Next() == b.Next() && a.salt == b.salt {
		t.Fatalf("two independently seeded generators produced the same salt")
	}
}
