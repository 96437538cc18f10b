// Package roomplane renders the planar surfaces of an isometric room (floors,
// walls and the outdoor landscape seen through windows) with [Ebitengine].
//
// Each [Plane] owns one offscreen buffer. On every tick the plane culls
// itself against the camera, projects its four corners, resolves its
// decoration from a data-driven visualization document and composites its
// layers into the buffer. The scene draws [Plane.Texture] at [Plane.Offset]
// in [Plane.RelativeDepth] order.
//
// # Quick start
//
//	geom := roomplane.NewRoomGeometry(64,
//		mgl64.Vec3{roomplane.HorizontalAngleDefault, roomplane.VerticalAngleDefault, 0},
//		mgl64.Vec3{})
//	arena := roomplane.NewBufferArena()
//	floor := roomplane.NewPlane(roomplane.PlaneConfig{
//		LeftSide:  mgl64.Vec3{4, 0, 0},
//		RightSide: mgl64.Vec3{0, 4, 0},
//		Type:      roomplane.PlaneFloor,
//	}, roomplane.Providers{Assets: lib, Buffers: arena})
//
//	// every tick
//	floor.Update(geom, elapsedMs, false, reflections.Snapshot())
//
// # Visualization documents
//
// [ParseVisualization] decodes the floorData / wallData / landscapeData
// sections. Each plane id lists per-scale visualizations whose layers are a
// tagged union of plain colors, materials and animated item lists. Materials
// pick a texture by the plane's 2D normal. Missing entries never fail an
// update; the plane is drawn undecorated instead.
//
// # Composition
//
// Walls, floors and plain landscapes draw one tiled, tinted base. Landscapes
// with textures, animation or a background color draw, back to front, a sky
// fill, the base texture, drifting [AnimationLayer] items, the foreground
// texture and avatar reflections. Bitmap and rectangle masks cut doors and
// windows out of every masked pass.
//
// # Reflections
//
// The scene driver registers avatars in a [ReflectionState] and passes its
// [ReflectionSnapshot] to every Update. Landscapes with window masks mirror
// nearby avatars, fading them in and out over 150 ms.
//
// # Buffers
//
// Buffers come from a [BufferPool]. [BufferArena] is the bundled pool; its
// Outstanding count returns to zero once every plane is disposed.
//
// [Ebitengine]: https://ebitengine.org
package roomplane
