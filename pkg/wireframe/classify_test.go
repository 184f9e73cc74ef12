package wireframe

import "testing"

func TestClassifyTruthTable(t *testing.T) {
	tests := []struct {
		name          string
		z0, z1, z2    float64
		want          ProjectionCase
		simple        bool
		singleVisible bool
	}{
		{"none visible", -1, -1, -1, 0b000, false, false},
		{"v0 only", 1, -1, -1, 0b001, false, true},
		{"v1 only", -1, 1, -1, 0b010, false, true},
		{"v0 and v1", 1, 1, -1, 0b011, false, false},
		{"v2 only", -1, -1, 1, 0b100, false, true},
		{"v0 and v2", 1, -1, 1, 0b101, false, false},
		{"v1 and v2", -1, 1, 1, 0b110, false, false},
		{"all visible", 1, 1, 1, 0b111, true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(tc.z0, tc.z1, tc.z2)
			if c != tc.want {
				t.Errorf("Classify(%v, %v, %v) = %03b, want %03b", tc.z0, tc.z1, tc.z2, c, tc.want)
			}
			if c.IsSimple() != tc.simple {
				t.Errorf("IsSimple() = %v, want %v", c.IsSimple(), tc.simple)
			}
			if c.IsSingleVisible() != tc.singleVisible {
				t.Errorf("IsSingleVisible() = %v, want %v", c.IsSingleVisible(), tc.singleVisible)
			}
		})
	}
}

func TestClassifyOnPlaneCountsAsInvisible(t *testing.T) {
	// A vertex exactly on the near plane (z = 0) does not pass the z > 0
	// visibility test.
	if c := Classify(0, 1, 1); c != 0b110 {
		t.Errorf("Classify(0, 1, 1) = %03b, want 110", c)
	}
}

func TestVisibleCount(t *testing.T) {
	for c := ProjectionCase(0); c < 8; c++ {
		want := int(c&1) + int(c>>1&1) + int(c>>2&1)
		if got := c.VisibleCount(); got != want {
			t.Errorf("case %03b: VisibleCount() = %d, want %d", c, got, want)
		}
	}
}

func TestCaseRolesConsistency(t *testing.T) {
	// For every partial-visibility case: A and B must be visible vertices,
	// A' and B' invisible ones, per the case's own bit pattern.
	for c := ProjectionCase(1); c < 7; c++ {
		a, aPrime, b, bPrime := c.roles()

		visible := func(i int) bool { return c&(1<<i) != 0 }

		if !visible(a) {
			t.Errorf("case %03b: role A = v%d is not visible", c, a)
		}
		if !visible(b) {
			t.Errorf("case %03b: role B = v%d is not visible", c, b)
		}
		if visible(aPrime) {
			t.Errorf("case %03b: role A' = v%d should be invisible", c, aPrime)
		}
		if visible(bPrime) {
			t.Errorf("case %03b: role B' = v%d should be invisible", c, bPrime)
		}

		if c.IsSingleVisible() {
			if a != b {
				t.Errorf("case %03b: single-visible roles A and B should coincide, got v%d and v%d", c, a, b)
			}
			if aPrime == bPrime {
				t.Errorf("case %03b: single-visible roles A' and B' should differ", c)
			}
		} else {
			if a == b {
				t.Errorf("case %03b: two-visible roles A and B should differ", c)
			}
			if aPrime != bPrime {
				t.Errorf("case %03b: two-visible roles A' and B' should both name the clipped vertex", c)
			}
		}
	}
}

func TestCaseRolesSentinels(t *testing.T) {
	for _, c := range []ProjectionCase{NoneVisible, AllVisible} {
		for _, r := range caseRoles[c] {
			if r != -1 {
				t.Errorf("case %03b: sentinel entry holds %d, want -1", c, r)
			}
		}
	}
}
