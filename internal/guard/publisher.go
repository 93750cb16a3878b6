package guard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/channel-guard/internal/eventbus"
	"github.com/annel0/channel-guard/internal/sim"
	"github.com/annel0/channel-guard/internal/vec"
)

// Типы событий, которые ядро зеркалирует во внешнюю шину.
const (
	EventJobCancelled = "guard.job_cancelled"
	EventTileFlagged  = "guard.tile_flagged"
	EventTileCleared  = "guard.tile_cleared"
	EventRescanDone   = "guard.rescan"
)

// Publisher зеркалирует действия ядра в шину событий. Публикация
// однонаправленная: ядро никогда не читает шину и не зависит от её
// доступности. Методы безопасны для nil-получателя.
type Publisher struct {
	bus    eventbus.EventBus
	source string
}

// NewPublisher создаёт издатель поверх шины. При bus == nil события
// не публикуются.
func NewPublisher(bus eventbus.EventBus, source string) *Publisher {
	if bus == nil {
		return nil
	}
	if source == "" {
		source = "channel-guard"
	}
	return &Publisher{bus: bus, source: source}
}

type tilePayload struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

type jobPayload struct {
	ID   string      `json:"id"`
	Kind string      `json:"kind"`
	Pos  tilePayload `json:"pos"`
}

type rescanPayload struct {
	Tick         uint64 `json:"tick"`
	Groups       int    `json:"groups"`
	TrackedTiles int    `json:"tracked_tiles"`
	Cancelled    int    `json:"cancelled"`
	Duration     string `json:"duration"`
}

func (p *Publisher) publish(eventType string, priority int, payload interface{}) {
	if p == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.bus.Publish(context.Background(), &eventbus.Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    p.source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Payload:   data,
	})
}

// JobCancelled публикует отзыв задачи
func (p *Publisher) JobCancelled(job *sim.Job) {
	p.publish(EventJobCancelled, 6, jobPayload{
		ID:   job.ID.String(),
		Kind: job.Kind.String(),
		Pos:  tilePayload{X: job.Pos.X, Y: job.Pos.Y, Z: job.Pos.Z},
	})
}

// TileFlagged публикует установку флага "небезопасно"
func (p *Publisher) TileFlagged(pos vec.Vec3) {
	p.publish(EventTileFlagged, 3, tilePayload{X: pos.X, Y: pos.Y, Z: pos.Z})
}

// TileCleared публикует снятие флага "небезопасно"
func (p *Publisher) TileCleared(pos vec.Vec3) {
	p.publish(EventTileCleared, 3, tilePayload{X: pos.X, Y: pos.Y, Z: pos.Z})
}

// RescanDone публикует сводку завершённого перескана
func (p *Publisher) RescanDone(tick uint64, groups, tiles, cancelled int, dur time.Duration) {
	p.publish(EventRescanDone, 4, rescanPayload{
		Tick:         tick,
		Groups:       groups,
		TrackedTiles: tiles,
		Cancelled:    cancelled,
		Duration:     dur.String(),
	})
}
