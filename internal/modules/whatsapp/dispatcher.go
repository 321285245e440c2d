package whatsapp

import (
	"context"

	"github.com/rs/zerolog"
)

const ErrNoProviderConfigured = "No WhatsApp provider configured"

// Message is an outbound WhatsApp text. The dispatcher is content-agnostic:
// Body passes through untouched.
type Message struct {
	To   string
	Body string
}

// Result reports one dispatch attempt across the configured channels.
type Result struct {
	Success   bool
	Provider  string
	MessageID string
	Error     string
}

// Dispatcher tries the primary provider first and falls back to the
// secondary on any primary failure. It never retries within a provider;
// retry is the caller's concern, fallback is the dispatcher's.
type Dispatcher struct {
	primary   Provider
	secondary Provider
	log       zerolog.Logger
}

func NewDispatcher(primary, secondary Provider, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		primary:   primary,
		secondary: secondary,
		log:       log,
	}
}

// NewDispatcherFromConfig builds providers for whichever channels carry
// credentials. Twilio is the primary channel, Meta the secondary.
func NewDispatcherFromConfig(twilio TwilioConfig, meta MetaConfig, log zerolog.Logger) *Dispatcher {
	var primary, secondary Provider
	if twilio.Configured() {
		primary = NewTwilioProvider(twilio)
	}
	if meta.Configured() {
		secondary = NewMetaProvider(meta)
	}
	return NewDispatcher(primary, secondary, log)
}

func (d *Dispatcher) SendMessage(ctx context.Context, m Message) Result {
	if d.primary == nil && d.secondary == nil {
		return Result{Success: false, Error: ErrNoProviderConfigured}
	}

	var lastErr, lastProvider string
	for _, p := range []Provider{d.primary, d.secondary} {
		if p == nil {
			continue
		}

		id, err := p.Send(ctx, m)
		if err == nil {
			return Result{Success: true, Provider: p.Name(), MessageID: id}
		}

		lastErr = err.Error()
		lastProvider = p.Name()
		d.log.Warn().
			Str("provider", p.Name()).
			Str("to", m.To).
			Err(err).
			Msg("whatsapp send attempt failed")
	}

	return Result{Success: false, Provider: lastProvider, Error: lastErr}
}
