package vec

// Vec2 представляет 2D координаты (в частности, локальные координаты тайла внутри чанка)
type Vec2 struct {
	X, Y int
}
