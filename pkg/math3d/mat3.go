package math3d

// Mat3 is a 3x3 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  3  6 |
// | 1  4  7 |
// | 2  5  8 |
//
// Its main use here is the viewport transform: a 2D affine map from
// normalized device coordinates to pixel coordinates, with the third row
// carrying the homogeneous 1.
type Mat3 [9]float64

// Identity3 returns the identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Viewport returns the matrix mapping normalized device coordinates
// ([-1, 1] on both axes) to pixel coordinates for a render target of the
// given size. Y is flipped so pixel rows grow downward.
func Viewport(width, height int) Mat3 {
	w := float64(width)
	h := float64(height)
	return Mat3{
		w / 2, 0, 0,
		0, -h / 2, 0,
		w / 2, h / 2, 1,
	}
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for col := range 3 {
		for row := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row+k*3] * b[k+col*3]
			}
			m[row+col*3] = sum
		}
	}
	return m
}

// MulPoint transforms a Vec2 as a point (implicit third component 1).
func (m Mat3) MulPoint(v Vec2) Vec2 {
	return Vec2{
		m[0]*v.X + m[3]*v.Y + m[6],
		m[1]*v.X + m[4]*v.Y + m[7],
	}
}

// MulVec3 transforms a Vec3.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// Get returns the element at (row, col).
func (m Mat3) Get(row, col int) float64 {
	return m[row+col*3]
}

// Set sets the element at (row, col).
func (m *Mat3) Set(row, col int, val float64) {
	m[row+col*3] = val
}
