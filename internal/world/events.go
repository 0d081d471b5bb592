package world

// Wall identifies an arena edge.
type Wall int

const (
	WallLeft Wall = iota
	WallRight
	WallTop
	WallBottom
)

func (w Wall) String() string {
	switch w {
	case WallLeft:
		return "left"
	case WallRight:
		return "right"
	case WallTop:
		return "top"
	case WallBottom:
		return "bottom"
	}
	return "unknown"
}

// Bounce is published when a body reflects off a wall.
type Bounce struct {
	Body   string
	Wall   Wall
	TickID uint64
	At     Vec2
}

// Despawned is published when a body leaves the world.
type Despawned struct {
	Body   string
	TickID uint64
	At     Vec2
}
