package guard

import (
	"sort"
)

// Status — краткий снимок состояния ядра для командной поверхности.
type Status struct {
	Enabled        bool   `json:"enabled"`
	TrackedTiles   int    `json:"tracked_tiles"`
	Groups         int    `json:"groups"`
	FreeSlots      int    `json:"free_slots"`
	ActiveJobs     int    `json:"active_jobs"`
	LastRescanTick uint64 `json:"last_rescan_tick"`
	Rescans        uint64 `json:"rescans"`
	Cancelled      uint64 `json:"cancelled"`
}

// Status возвращает снимок состояния ядра
func (m *Manager) Status() Status {
	return Status{
		Enabled:        m.enabled,
		TrackedTiles:   m.tracker.TileCount(),
		Groups:         m.tracker.GroupCount(),
		FreeSlots:      m.tracker.FreeSlotCount(),
		ActiveJobs:     m.registry.Len(),
		LastRescanTick: m.lastRescanTick,
		Rescans:        m.rescansTotal,
		Cancelled:      m.cancelledTotal,
	}
}

// TileDump — состояние одного отслеживаемого тайла в отладочном дампе.
type TileDump struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Z           int    `json:"z"`
	Unsafe      bool   `json:"unsafe"`
	Designation string `json:"designation"`
	Priority    int32  `json:"priority,omitempty"`
}

// GroupDump — одна группа с её слотом арены.
type GroupDump struct {
	Slot  int        `json:"slot"`
	Tiles []TileDump `json:"tiles"`
}

// JobDump — активная задача выемки.
type JobDump struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Z    int    `json:"z"`
}

// Dump — полный отладочный дамп состояния ядра.
type Dump struct {
	Enabled   bool        `json:"enabled"`
	Groups    []GroupDump `json:"groups"`
	FreeSlots []int       `json:"free_slots"`
	Jobs      []JobDump   `json:"jobs"`
}

// Dump собирает отладочный дамп. Группы и тайлы отсортированы, чтобы
// дампы были воспроизводимы.
func (m *Manager) Dump() Dump {
	d := Dump{Enabled: m.enabled}

	for slot, g := range m.tracker.groups {
		if _, freed := m.tracker.free[slot]; freed {
			continue
		}
		if g == nil || g.Len() == 0 {
			continue
		}
		gd := GroupDump{Slot: slot}
		for pos, chunk := range g.tiles {
			local := pos.LocalInChunk()
			td := TileDump{
				X:           pos.X,
				Y:           pos.Y,
				Z:           pos.Z,
				Unsafe:      chunk.UnsafeAt(local),
				Designation: chunk.DesignationAt(local).String(),
			}
			if p, ok := chunk.PriorityAt(local); ok {
				td.Priority = p
			}
			gd.Tiles = append(gd.Tiles, td)
		}
		sort.Slice(gd.Tiles, func(i, j int) bool {
			a, b := gd.Tiles[i], gd.Tiles[j]
			if a.Z != b.Z {
				return a.Z < b.Z
			}
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			return a.X < b.X
		})
		d.Groups = append(d.Groups, gd)
	}
	sort.Slice(d.Groups, func(i, j int) bool { return d.Groups[i].Slot < d.Groups[j].Slot })

	for slot := range m.tracker.free {
		d.FreeSlots = append(d.FreeSlots, slot)
	}
	sort.Ints(d.FreeSlots)

	for _, job := range m.registry.Jobs() {
		d.Jobs = append(d.Jobs, JobDump{
			ID:   job.ID.String(),
			Kind: job.Kind.String(),
			X:    job.Pos.X,
			Y:    job.Pos.Y,
			Z:    job.Pos.Z,
		})
	}
	sort.Slice(d.Jobs, func(i, j int) bool { return d.Jobs[i].ID < d.Jobs[j].ID })

	return d
}
