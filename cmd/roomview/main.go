// Roomview builds a small isometric room (floor, two walls and a landscape
// seen through a window) and composites every plane each tick. An avatar
// walks past the window so its reflection fades in and out.
//
// Usage:
//
//	roomview -vis assets/room_visualization.yaml -textures assets/textures
package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.uber.org/zap"

	"github.com/phanxgames/roomplane"
	"github.com/phanxgames/roomplane/internal/config"
	"github.com/phanxgames/roomplane/internal/logger"
)

const avatarID = 1

type viewer struct {
	cfg         *config.Config
	geom        *roomplane.RoomGeometry
	planes      []*roomplane.Plane
	arena       *roomplane.BufferArena
	reflections *roomplane.ReflectionState
	avatar      *roomplane.Texture
	start       time.Time
	order       []*roomplane.Plane
}

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "roomview: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()
	roomplane.SetLogger(logger.Log)

	lib := loadLibrary(cfg.Assets)
	v := newViewer(cfg, lib)

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	if err := ebiten.RunGame(v); err != nil {
		logger.Log.Fatal("game loop", zap.Error(err))
	}
}

// loadLibrary reads the visualization document and every PNG in the texture
// directory into a single room collection. Missing files leave the room
// undecorated.
func loadLibrary(assets config.AssetsConfig) roomplane.MapLibrary {
	var vis *roomplane.RoomVisualization
	if data, err := os.ReadFile(assets.Visualization); err != nil {
		logger.Log.Warn("visualization not loaded", zap.String("path", assets.Visualization), zap.Error(err))
	} else if vis, err = roomplane.ParseVisualization(data); err != nil {
		logger.Log.Warn("visualization invalid", zap.String("path", assets.Visualization), zap.Error(err))
	}

	room := roomplane.NewMapCollection(roomplane.CollectionRoom, vis)
	files, err := filepath.Glob(filepath.Join(assets.TextureDir, "*.png"))
	if err != nil {
		logger.Log.Warn("texture directory", zap.Error(err))
	}
	for _, path := range files {
		img, _, err := ebitenutil.NewImageFromFile(path)
		if err != nil {
			logger.Log.Warn("texture not loaded", zap.String("path", path), zap.Error(err))
			continue
		}
		room.AddTexture(strings.TrimSuffix(filepath.Base(path), ".png"), img)
	}
	logger.Log.Info("assets loaded", zap.Int("textures", len(files)), zap.Bool("visualization", vis != nil))
	return roomplane.MapLibrary{roomplane.CollectionRoom: room}
}

func newViewer(cfg *config.Config, lib roomplane.AssetLibrary) *viewer {
	size := float64(cfg.Room.Size)
	height := float64(cfg.Room.WallHeight)

	v := &viewer{
		cfg: cfg,
		geom: roomplane.NewRoomGeometry(cfg.Room.Scale,
			mgl64.Vec3{roomplane.HorizontalAngleDefault, roomplane.VerticalAngleDefault, 0},
			mgl64.Vec3{size / 2, size / 2, 0}),
		arena:       roomplane.NewBufferArena(),
		reflections: roomplane.NewReflectionState(),
		avatar:      roomplane.NewTexture("avatar", silhouette(24, 72)),
		start:       time.Now(),
	}

	shapes := roomplane.NewMaskShapeSet()
	shapes.Add("window", 0, roomplane.MaskShape{
		Texture: roomplane.NewTexture("window_mask", silhouette(48, 64)),
		Offset:  roomplane.Vec2{X: -48, Y: -64},
	})
	providers := roomplane.Providers{Assets: lib, MaskShapes: shapes, Buffers: v.arena}

	floor := roomplane.NewPlane(roomplane.PlaneConfig{
		Origin:    mgl64.Vec3{0, 0, 0},
		Location:  mgl64.Vec3{0, 0, 0},
		LeftSide:  mgl64.Vec3{size, 0, 0},
		RightSide: mgl64.Vec3{0, size, 0},
		Type:      roomplane.PlaneFloor,
	}, providers)
	floor.SetID(cfg.Room.FloorID)

	backWall := roomplane.NewPlane(roomplane.PlaneConfig{
		Origin:    mgl64.Vec3{0, 0, 0},
		Location:  mgl64.Vec3{0, 0, 0},
		LeftSide:  mgl64.Vec3{0, size, 0},
		RightSide: mgl64.Vec3{0, 0, height},
		Type:      roomplane.PlaneWall,
		UseMask:   true,
	}, providers)
	backWall.SetID(cfg.Room.WallID)
	backWall.AddRectangleMask(size*0.5+1, height*0.3, 2, height*0.5)
	backWall.AddBitmapMask("window", size*0.2+1, height*0.3)

	sideWall := roomplane.NewPlane(roomplane.PlaneConfig{
		Origin:    mgl64.Vec3{size, 0, 0},
		Location:  mgl64.Vec3{size, 0, 0},
		LeftSide:  mgl64.Vec3{-size, 0, 0},
		RightSide: mgl64.Vec3{0, 0, height},
		Type:      roomplane.PlaneWall,
	}, providers)
	sideWall.SetID(cfg.Room.WallID)

	landscape := roomplane.NewPlane(roomplane.PlaneConfig{
		Origin:      mgl64.Vec3{-0.01, 0, 0},
		Location:    mgl64.Vec3{-0.01, 0, 0},
		LeftSide:    mgl64.Vec3{0, size, 0},
		RightSide:   mgl64.Vec3{0, 0, height},
		Type:        roomplane.PlaneLandscape,
		TextureMaxX: size,
		TextureMaxY: height,
	}, providers)
	landscape.SetID(cfg.Room.LandscapeID)
	landscape.SetColor(roomplane.RGB(0xE8F4FF))
	if cfg.Room.Reflections {
		landscape.AddWindowMask(size*0.5, height*0.3)
	}

	v.planes = []*roomplane.Plane{landscape, backWall, sideWall, floor}
	return v
}

// silhouette returns an opaque w x h block used for the avatar and masks.
func silhouette(w, h int) *ebiten.Image {
	img := ebiten.NewImage(w, h)
	img.Fill(color.RGBA{0x30, 0x30, 0x40, 0xff})
	return img
}

func (v *viewer) Update() error {
	now := float64(time.Since(v.start).Milliseconds())

	if v.cfg.Room.Reflections {
		// Walk along the window wall, leaving the room halfway through the loop.
		phase := math.Mod(now/1000, 8)
		if phase < 4 {
			size := float64(v.cfg.Room.Size)
			v.reflections.SetAvatar(roomplane.ReflectionAvatar{
				ID:        avatarID,
				Texture:   v.avatar,
				Location:  mgl64.Vec3{0.5, size * phase / 4, 0},
				Direction: 180,
			})
		} else {
			v.reflections.RemoveAvatar(avatarID)
		}
	}

	animateAt := now
	if !v.cfg.Room.Animate {
		animateAt = 0
	}
	snap := v.reflections.Snapshot()
	for _, p := range v.planes {
		if p.Update(v.geom, animateAt, false, snap) {
			v.order = nil
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x16, 0x16, 0x22, 0xff})

	if v.order == nil {
		v.order = v.order[:0]
		for _, p := range v.planes {
			if p.Visible() {
				v.order = append(v.order, p)
			}
		}
		sort.SliceStable(v.order, func(i, j int) bool {
			return v.order[i].RelativeDepth() > v.order[j].RelativeDepth()
		})
	}

	cx := float64(v.cfg.Window.Width) / 2
	cy := float64(v.cfg.Window.Height) / 2
	var op ebiten.DrawImageOptions
	for _, p := range v.order {
		img := p.Texture()
		if img == nil {
			continue
		}
		origin := v.geom.ScreenPoint(p.Origin())
		off := p.Offset()
		op.GeoM.Reset()
		op.GeoM.Translate(cx+math.Round(origin.X)-off.X, cy+math.Round(origin.Y)-off.Y)
		screen.DrawImage(img, &op)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("planes %d  buffers %d  TPS %.0f",
		len(v.order), v.arena.Created(), ebiten.ActualTPS()))
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.cfg.Window.Width, v.cfg.Window.Height
}
