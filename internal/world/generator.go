package world

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/channel-guard/internal/vec"
)

// MapGenerator создаёт демонстрационную карту для хоста симуляции:
// рельеф поверхности задаётся шумом Перлина, а на подходящих участках
// размечаются площадки вертикальной выемки (каналы слой за слоем).
type MapGenerator struct {
	Seed        int64
	NoiseScale  float64 // Масштаб шума высот
	SiteDensity float64 // Доля колонн, получающих площадку выемки

	noise *perlin.Perlin
}

// NewMapGenerator создаёт генератор с указанным сидом
func NewMapGenerator(seed int64) *MapGenerator {
	const (
		alpha   = 2.0 // Сглаживание шума
		beta    = 2.0 // Частота шума
		octaves = 3
	)
	return &MapGenerator{
		Seed:        seed,
		NoiseScale:  0.05,
		SiteDensity: 0.01,
		noise:       perlin.NewPerlin(alpha, beta, octaves, seed),
	}
}

// SurfaceLayer возвращает слой поверхности для колонны (x, y) при глубине карты depth.
// Поверхность лежит в верхней половине карты; ниже неё — порода.
func (mg *MapGenerator) SurfaceLayer(x, y, depth int) int {
	n := mg.noise.Noise2D(float64(x)*mg.NoiseScale, float64(y)*mg.NoiseScale)
	h := (n + 1.0) / 2.0 // В диапазон 0..1

	base := depth / 2
	span := depth - base - 1
	if span < 0 {
		span = 0
	}
	return base + int(h*float64(span))
}

// Generate создаёт карту x*y*z тайлов и размечает на ней площадки выемки.
// Результат детерминирован по сиду.
func (mg *MapGenerator) Generate(x, y, z int) *MapGrid {
	grid := NewMapGrid(x, y, z)
	rng := rand.New(rand.NewSource(mg.Seed))

	for ix := 0; ix < x; ix++ {
		for iy := 0; iy < y; iy++ {
			if rng.Float64() >= mg.SiteDensity {
				continue
			}
			mg.placeSite(grid, rng, ix, iy, z)
		}
	}

	return grid
}

// placeSite размечает одну площадку: вертикальный ствол каналов от поверхности
// вниз плюс несколько соседних тайлов обычной выемки на слое поверхности.
func (mg *MapGenerator) placeSite(grid *MapGrid, rng *rand.Rand, x, y, depth int) {
	surface := mg.SurfaceLayer(x, y, depth)
	shaftDepth := 2 + rng.Intn(4) // Ствол в 2-5 слоёв

	for d := 0; d < shaftDepth; d++ {
		layer := surface - d
		if layer < 0 {
			break
		}
		grid.SetDesignation(vec.Vec3{X: x, Y: y, Z: layer}, DesignationChannel)
	}

	// Подсобная выемка вокруг устья ствола
	for _, n := range (vec.Vec3{X: x, Y: y, Z: surface}).Neighbours8() {
		if rng.Float64() < 0.35 {
			grid.SetDesignation(n, DesignationDig)
		}
	}
}
