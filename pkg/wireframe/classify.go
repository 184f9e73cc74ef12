package wireframe

// ProjectionCase identifies which of a triangle's three vertices lie in
// front of the near clipping plane. Bit i is set when vertex i is visible,
// giving eight mutually exclusive, exhaustive cases.
type ProjectionCase uint8

const (
	// NoneVisible is the fully clipped case: the rasterizer emits no
	// fragments for such a triangle, and the role table holds no entry
	// for it. Callers must short-circuit rather than look up roles.
	NoneVisible ProjectionCase = 0b000

	// AllVisible is the simple case: all three vertices project cleanly
	// and the overlay uses the triangle's altitudes directly.
	AllVisible ProjectionCase = 0b111
)

// Classify derives the projection case from the three raw clip-space depth
// coordinates. The test runs on the pre-division clip z: the screen-space
// projection of a behind-camera vertex is directionally inverted and must
// never be used for visibility testing.
func Classify(z0, z1, z2 float64) ProjectionCase {
	var c ProjectionCase
	if z0 > 0 {
		c |= 0b001
	}
	if z1 > 0 {
		c |= 0b010
	}
	if z2 > 0 {
		c |= 0b100
	}
	return c
}

// IsSimple reports the all-visible case.
func (c ProjectionCase) IsSimple() bool {
	return c == AllVisible
}

// IsSingleVisible reports that exactly one vertex survives clipping. Such
// triangles have two live screen-space edges rather than three.
func (c ProjectionCase) IsSingleVisible() bool {
	return c == 0b001 || c == 0b010 || c == 0b100
}

// VisibleCount returns how many of the triangle's vertices are visible.
func (c ProjectionCase) VisibleCount() int {
	return int(c&1) + int(c>>1&1) + int(c>>2&1)
}

// caseRoles maps each partial-visibility case to four vertex-index roles:
// A and B are visible vertices bounding the two drawable edges, and A' and
// B' are the invisible neighbors that define each edge's direction. In the
// single-visible cases A and B coincide and the two edges fan out from the
// same screen point. Entry order is {A, A', B, B'}. The first and last
// entries are sentinels: the fully clipped and fully visible cases never
// consult the table.
var caseRoles = [8][4]int{
	{-1, -1, -1, -1}, // 0b000
	{0, 1, 0, 2},     // 0b001: v0 visible
	{1, 0, 1, 2},     // 0b010: v1 visible
	{0, 2, 1, 2},     // 0b011: v0 and v1 visible
	{2, 0, 2, 1},     // 0b100: v2 visible
	{0, 1, 2, 1},     // 0b101: v0 and v2 visible
	{1, 0, 2, 0},     // 0b110: v1 and v2 visible
	{-1, -1, -1, -1}, // 0b111
}

// roles returns the vertex-index roles for a partial-visibility case.
func (c ProjectionCase) roles() (a, aPrime, b, bPrime int) {
	r := caseRoles[c]
	return r[0], r[1], r[2], r[3]
}
