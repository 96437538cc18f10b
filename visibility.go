package roomplane

import "github.com/go-gl/mathgl/mgl64"

// backfaceThreshold is the cosine above which a surface counts as facing away
// from the camera. The small negative margin also hides edge-on surfaces.
const backfaceThreshold = -0.001

// facesCamera reports whether a surface with the given normals is visible
// along axis. The primary normal is tested first, then each secondary normal
// in order; the first failing test hides the surface.
func facesCamera(axis, normal mgl64.Vec3, secondary []mgl64.Vec3) bool {
	if cosAngle(axis, normal) > backfaceThreshold {
		return false
	}
	for _, n := range secondary {
		if cosAngle(axis, n) > backfaceThreshold {
			return false
		}
	}
	return true
}

// classifyVisibility updates the plane's visibility flag from axis and
// reports whether the flag changed.
func (p *Plane) classifyVisibility(axis mgl64.Vec3) bool {
	visible := facesCamera(axis, p.normal, p.cfg.SecondaryNormals)
	if visible == p.isVisible {
		return false
	}
	p.isVisible = visible
	return true
}
