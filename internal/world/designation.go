package world

// Designation — запрошенный вид выемки для тайла.
type Designation uint8

const (
	DesignationNone    Designation = iota // Тайл не назначен к выемке
	DesignationDig                        // Обычная выемка (горизонтальная)
	DesignationChannel                    // Канал: выемка с обрушением в слой ниже
)

// IsActive сообщает, назначен ли тайл к какой-либо выемке
func (d Designation) IsActive() bool {
	return d == DesignationDig || d == DesignationChannel
}

// String возвращает строковое представление для логов и дампов
func (d Designation) String() string {
	switch d {
	case DesignationNone:
		return "none"
	case DesignationDig:
		return "dig"
	case DesignationChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// Occupancy — битовые флаги занятости тайла.
type Occupancy uint8

const (
	// OccUnsafe — флаг "отмечен небезопасным": подавляет автоматическое
	// назначение работы на тайл, пока не снят.
	OccUnsafe Occupancy = 1 << iota
)

// Unsafe сообщает, отмечен ли тайл небезопасным
func (o Occupancy) Unsafe() bool {
	return o&OccUnsafe != 0
}
