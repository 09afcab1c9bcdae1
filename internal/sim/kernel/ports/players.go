package ports

import "chunkfall.ai/internal/sim/kernel/model"

type Player interface {
	Name() string
	Sneaking() bool
	MainHand() *model.ItemStack
	SetMainHand(s *model.ItemStack)
}

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier delivers player-facing feedback from the registration and
// teardown triggers. Formatting is up to the implementation.
type Notifier interface {
	Notify(player string, level Level, msg string)
}
