package vec

// Vec3 представляет позицию тайла в воксельной сетке.
// X и Y — горизонтальные координаты, Z — слой глубины (больше Z — выше).
// Равенство структур используется как ключ идентичности тайла.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Above возвращает позицию тайла непосредственно на слой выше
func (v Vec3) Above() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z + 1}
}

// Below возвращает позицию тайла непосредственно на слой ниже
func (v Vec3) Below() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z - 1}
}

// LocalInChunk возвращает локальные координаты тайла внутри его чанка 16x16
func (v Vec3) LocalInChunk() Vec2 {
	return Vec2{X: v.X & 0xF, Y: v.Y & 0xF}
}

// ToChunkCoords возвращает координаты чанка, содержащего тайл.
// X и Y делятся на 16, слой остаётся без изменений.
func (v Vec3) ToChunkCoords() Vec3 {
	return Vec3{X: v.X >> 4, Y: v.Y >> 4, Z: v.Z}
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Neighbours8 возвращает 8 соседних позиций на том же слое
func (v Vec3) Neighbours8() [8]Vec3 {
	return [8]Vec3{
		{X: v.X - 1, Y: v.Y - 1, Z: v.Z},
		{X: v.X, Y: v.Y - 1, Z: v.Z},
		{X: v.X + 1, Y: v.Y - 1, Z: v.Z},
		{X: v.X - 1, Y: v.Y, Z: v.Z},
		{X: v.X + 1, Y: v.Y, Z: v.Z},
		{X: v.X - 1, Y: v.Y + 1, Z: v.Z},
		{X: v.X, Y: v.Y + 1, Z: v.Z},
		{X: v.X + 1, Y: v.Y + 1, Z: v.Z},
	}
}
