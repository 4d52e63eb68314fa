package bot

import (
	"context"
	"iter"

	"github.com/oshokin/shoretemp/internal/telegram"
)

// Source delivers inbound updates.
type Source interface {
	// Prepare configures Telegram for this delivery method.
	Prepare(ctx context.Context) error
	// Updates yields updates until ctx is done or the consumer stops.
	// Ranging over it again continues where the previous range left off.
	Updates(ctx context.Context) iter.Seq[telegram.Update]
}
