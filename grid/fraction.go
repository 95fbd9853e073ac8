// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

// EdgeFraction computes fraction(v1,v2) = clamp(v1/(v1-v2), 0, 1), the
// zero-isosurface edge-interpolation parameter used here; the levelset
// package's tetrahedral cell-volume computation uses the same formula
// (levelset.EdgeFractionValue).
func EdgeFraction(v1, v2 float64) float64 {
	denom := v1 - v2
	if denom == 0 {
		if v1 <= 0 {
			return 1
		}
		return 0
	}
	return ClampFloat(v1/denom, 0, 1)
}

// triangleFractionInside returns the fraction of a triangle's area for
// which the (linearly-interpolated) level-set value is negative, given
// the three corner values. Degenerate (all-same-sign) cases are O(1);
// mixed-sign cases use the exact affine-scaling argument: a sub-triangle
// cut from a vertex along its two incident edges has area equal to the
// product of the two edge-intersection parameters times the parent
// triangle's area, regardless of the triangle's shape.
func triangleFractionInside(v0, v1, v2 float64) float64 {
	neg := 0
	if v0 < 0 {
		neg++
	}
	if v1 < 0 {
		neg++
	}
	if v2 < 0 {
		neg++
	}
	switch neg {
	case 0:
		return 0
	case 3:
		return 1
	case 1:
		// exactly one negative corner: cut a small triangle at it
		var neg0, pos1, pos2 float64
		switch {
		case v0 < 0:
			neg0, pos1, pos2 = v0, v1, v2
		case v1 < 0:
			neg0, pos1, pos2 = v1, v0, v2
		default:
			neg0, pos1, pos2 = v2, v0, v1
		}
		t1 := EdgeFraction(neg0, pos1)
		t2 := EdgeFraction(neg0, pos2)
		return t1 * t2
	default: // 2 negative, 1 positive
		var pos0, neg1, neg2 float64
		switch {
		case v0 >= 0:
			pos0, neg1, neg2 = v0, v1, v2
		case v1 >= 0:
			pos0, neg1, neg2 = v1, v0, v2
		default:
			pos0, neg1, neg2 = v2, v0, v1
		}
		t1 := EdgeFraction(pos0, neg1)
		t2 := EdgeFraction(pos0, neg2)
		return 1 - t1*t2
	}
}

// QuadFractionInside returns the fraction of a unit-square face whose
// (bilinearly interpolated) level-set value is negative, given the four
// corner values in the order (0,0) (1,0) (1,1) (0,1). The quad is split
// into the two triangles (0,1,2) and (0,2,3), each contributing half
// the area.
func QuadFractionInside(c00, c10, c11, c01 float64) float64 {
	return 0.5*triangleFractionInside(c00, c10, c11) + 0.5*triangleFractionInside(c00, c11, c01)
}

const (
	// DefaultEpsFluid is the default clamp floor for nonzero fluid
	// density fractions
	DefaultEpsFluid = 1e-2
	// DefaultEpsSolid is the default clamp floor for nonzero solid
	// area fractions
	DefaultEpsSolid = 1e-2
)

// ClampFractionNonzero clamps a fraction in [0,1] up to eps if it is
// nonzero but below eps; an exact zero is left untouched.
func ClampFractionNonzero(v, eps float64) float64 {
	if v > 0 && v < eps {
		return eps
	}
	return v
}

// FaceCornerNodes returns the 4 node indices (in winding order
// (0,0)->(1,0)->(1,1)->(0,1) of the face's own in-plane axes) bounding
// face (dim,i,j,k), for use with a node-valued getter such as a solid or
// fluid level set sampled at nodes.
func FaceCornerNodes(dim, i, j, k int) (n0, n1, n2, n3 [3]int) {
	switch dim {
	case 0: // face normal to x: spans (y,z)
		return [3]int{i, j, k}, [3]int{i, j + 1, k}, [3]int{i, j + 1, k + 1}, [3]int{i, j, k + 1}
	case 1: // face normal to y: spans (z,x)
		return [3]int{i, j, k}, [3]int{i, j, k + 1}, [3]int{i + 1, j, k + 1}, [3]int{i + 1, j, k}
	default: // dim==2, face normal to z: spans (x,y)
		return [3]int{i, j, k}, [3]int{i + 1, j, k}, [3]int{i + 1, j + 1, k}, [3]int{i, j + 1, k}
	}
}

// SolidAreaFraction computes A_dim(face) in [0,1]: the fraction of the
// face not intersecting solid (0 inside solid, 1 in free air/fluid),
// from the solid level-set's 4 corner values on the face
// (solid>0 free, solid<0 inside solid).
func SolidAreaFraction(c00, c10, c11, c01, epsSolid float64) float64 {
	insideSolidFrac := QuadFractionInside(c00, c10, c11, c01)
	return ClampFractionNonzero(1-insideSolidFrac, epsSolid)
}

// FluidDensityFraction computes rho_dim(face) in [0,1]: the two-sided
// level-set fraction of the face inside fluid (fluid<0 inside fluid),
// from the fluid level-set's 4 corner values on the face.
func FluidDensityFraction(c00, c10, c11, c01, epsFluid float64) float64 {
	return ClampFractionNonzero(QuadFractionInside(c00, c10, c11, c01), epsFluid)
}
