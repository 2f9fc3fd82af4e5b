package components

import "testing"

func TestModifiers_Get(t *testing.T) {
	m := Modifiers{
		EffectiveAttack:      1.5,
		EffectiveMetabolism:  0.75,
		DamageReduction:      0.2,
		ReproductionModifier: 0.4,
	}
	tests := []struct {
		key  string
		want float64
	}{
		{ModEffectiveAttack, 1.5},
		{ModEffectiveMetabolism, 0.75},
		{ModDamageReduction, 0.2},
		{ModReproductionModifier, 0.4},
		{"unknown", 1},
	}
	for _, tt := range tests {
		if got := m.Get(tt.key); got != tt.want {
			t.Errorf("Get(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestNeutralModifiers(t *testing.T) {
	n := NeutralModifiers()
	for _, key := range []string{ModEffectiveAttack, ModEffectiveMetabolism, ModReproductionModifier} {
		if n.Get(key) != 1 {
			t.Errorf("%s = %v, want 1", key, n.Get(key))
		}
	}
	if n.Get(ModDamageReduction) != 0 {
		t.Errorf("damage reduction = %v, want 0", n.Get(ModDamageReduction))
	}
}

func TestVitals_KillKeepsFirstCause(t *testing.T) {
	v := Vitals{Alive: true}
	v.Kill(CauseKilled)
	v.Kill(CauseStarvation)
	if v.Alive || v.Cause != CauseKilled {
		t.Errorf("alive = %v cause = %s, want dead by killed", v.Alive, v.Cause)
	}
}
