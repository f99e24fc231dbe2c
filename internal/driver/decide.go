package driver

// EffectKind enumerates what an event asks the dispatcher to do.
type EffectKind int

const (
	// EffectNone means the event is ignored without any side effect.
	EffectNone EffectKind = iota
	// EffectSendWelcome means one welcome email must be sent.
	EffectSendWelcome
)

func (k EffectKind) String() string {
	switch k {
	case EffectSendWelcome:
		return "send_welcome"
	default:
		return "none"
	}
}

// Effect is the outcome of Decide.
type Effect struct {
	Kind      EffectKind
	Recipient string
	Name      string
}

// Decide maps a created event to an effect. It performs no I/O.
//
// An event without a snapshot, or a snapshot without an email, yields
// EffectNone. An email of a non-empty non-string value yields
// ErrMalformedPayload.
func Decide(e CreatedEvent) (Effect, error) {
	if e.Data == nil {
		return Effect{Kind: EffectNone}, nil
	}

	rec, err := RecordFromData(e.Data)
	if err != nil {
		return Effect{}, err
	}
	if rec.Email == "" {
		return Effect{Kind: EffectNone}, nil
	}

	return Effect{
		Kind:      EffectSendWelcome,
		Recipient: rec.Email,
		Name:      rec.FullName,
	}, nil
}
