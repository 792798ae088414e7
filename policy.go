package tether

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Policy names one of the delivery policies,
// so that the choice can be made from configuration.
type Policy uint8

const (
	// FirstPolicy delivers only the first value, see [DeliverFirst].
	FirstPolicy Policy = iota + 1

	// LatestPolicy delivers the most recent notification, see [DeliverLatest].
	LatestPolicy

	// ReplayPolicy replays the full history on attachment, see [DeliverReplay].
	ReplayPolicy
)

// ErrUnknownPolicy is returned when parsing or applying
// a value that does not name a [Policy].
var ErrUnknownPolicy = errors.New("unknown delivery policy")

func (p Policy) String() string {
	switch p {
	case FirstPolicy:
		return "first"
	case LatestPolicy:
		return "latest"
	case ReplayPolicy:
		return "replay"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ParsePolicy returns the Policy named by s, ignoring case
// and surrounding whitespace.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return FirstPolicy, nil
	case "latest":
		return LatestPolicy, nil
	case "replay":
		return ReplayPolicy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case FirstPolicy, LatestPolicy, ReplayPolicy:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPolicy, uint8(p))
	}
}

func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ForPolicy returns the transformer for p,
// bound to the given attachment.
func ForPolicy[T any](p Policy, log *slog.Logger, view Attachment) (Transformer[T], error) {
	switch p {
	case FirstPolicy:
		return DeliverFirst[T](log, view), nil
	case LatestPolicy:
		return DeliverLatest[T](log, view), nil
	case ReplayPolicy:
		return DeliverReplay[T](log, view), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, p)
	}
}
