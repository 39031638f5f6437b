package waf

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/noticket/waf/core/logger"
	"github.com/noticket/waf/core/threatlog"
)

// Config is the immutable configuration of an Engine.
type Config struct {
	// Patterns is the always-blocked rule set (default: DefaultPatterns).
	Patterns *PatternSet
	// MaxDecodeIterations caps the decode loop (default: 5).
	MaxDecodeIterations int
	// DisableLogging turns threat records off. Blocks still happen.
	DisableLogging bool
	// Sink receives threat records (default: FileSink at threatlog.DefaultPath).
	Sink threatlog.Sink
	// Logger receives operational logs (default: slog.Default()).
	Logger *slog.Logger
	// NewID mints incident ids (default: NewIncidentID).
	NewID IDGenerator
	// Now is the clock (default: time.Now).
	Now func() time.Time
}

// Engine runs the validation pipeline. It holds no mutable state and is
// safe for concurrent use; the sink is the only shared resource.
type Engine struct {
	patterns *PatternSet
	decoder  Decoder
	logging  bool
	sink     threatlog.Sink
	log      *slog.Logger
	newID    IDGenerator
	now      func() time.Time
}

// New builds an Engine, filling unset fields with defaults.
func New(cfg Config) *Engine {
	e := &Engine{
		patterns: cfg.Patterns,
		decoder:  Decoder{MaxIterations: cfg.MaxDecodeIterations},
		logging:  !cfg.DisableLogging,
		sink:     cfg.Sink,
		log:      cfg.Logger,
		newID:    cfg.NewID,
		now:      cfg.Now,
	}
	if e.patterns == nil {
		e.patterns = DefaultPatterns()
	}
	if e.sink == nil {
		e.sink = threatlog.NewFileSink(threatlog.DefaultPath)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.newID == nil {
		e.newID = NewIncidentID
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Finding describes why a scalar was rejected.
type Finding struct {
	Kind     ViolationKind
	Category Category
	Threat   string
}

// Inspect classifies a single scalar without logging or blocking:
// raw pattern scan, decode-and-rescan, then the whitelist of mode against
// the raw text. The decoded text is used for attack detection only.
func (e *Engine) Inspect(s string, mode Mode) (Finding, bool) {
	if s == "" {
		return Finding{}, false
	}

	if cat, ok := e.patterns.Match(s); ok {
		return Finding{Kind: DirectPatternViolation, Category: cat, Threat: ThreatDirectPattern}, true
	}

	decoded := e.decoder.Decode(s)
	for _, step := range decoded.Steps {
		if cat, ok := e.patterns.Match(step); ok {
			return Finding{Kind: EncodedPatternViolation, Category: cat, Threat: ThreatEncodedAttack}, true
		}
	}
	if decoded.Exhausted {
		return Finding{Kind: EncodedPatternViolation, Threat: ThreatEncodedAttack}, true
	}

	// Whitelist runs on the raw value, not the decoded one.
	if !AllowedByMode(s, mode) {
		return Finding{Kind: WhitelistViolation, Threat: fmt.Sprintf(threatWhitelistFmt, mode)}, true
	}
	return Finding{}, false
}

// Sanitize validates v under mode and returns it HTML-encoded.
// On rejection it returns a *Violation and no value; the first violating
// leaf stops processing of every remaining sibling.
func (e *Engine) Sanitize(ctx context.Context, v Value, mode Mode) (Value, error) {
	return e.run(ctx, v, mode, true)
}

// Pass validates v under mode and returns it unmodified.
func (e *Engine) Pass(ctx context.Context, v Value, mode Mode) (Value, error) {
	return e.run(ctx, v, mode, false)
}

// SanitizeString is Sanitize for a single string.
func (e *Engine) SanitizeString(ctx context.Context, s string, mode Mode) (string, error) {
	out, err := e.Sanitize(ctx, String(s), mode)
	if err != nil {
		return "", err
	}
	return out.Str(), nil
}

// PassString is Pass for a single string.
func (e *Engine) PassString(ctx context.Context, s string, mode Mode) (string, error) {
	out, err := e.Pass(ctx, String(s), mode)
	if err != nil {
		return "", err
	}
	return out.Str(), nil
}

// Secure sanitizes s in strict mode.
func (e *Engine) Secure(ctx context.Context, s string) (string, error) {
	return e.SanitizeString(ctx, s, DefaultSanitizeMode)
}

// PassThrough passes s in passthrough mode.
func (e *Engine) PassThrough(ctx context.Context, s string) (string, error) {
	return e.PassString(ctx, s, DefaultPassMode)
}

// Reflect HTML-encodes v for display. See the package-level Reflect.
func (e *Engine) Reflect(v Value) Value {
	return Reflect(v)
}

func (e *Engine) run(ctx context.Context, v Value, mode Mode, encode bool) (Value, error) {
	switch v.kind {
	case KindNull:
		return v, nil

	case KindList:
		out := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			clean, err := e.run(ctx, item, mode, encode)
			if err != nil {
				return Value{}, err
			}
			out = append(out, clean)
		}
		return List(out...), nil

	case KindMap:
		out := make([]Pair, 0, len(v.pairs))
		for _, p := range v.pairs {
			clean, err := e.run(ctx, p.Value, mode, encode)
			if err != nil {
				return Value{}, err
			}
			out = append(out, P(p.Key, clean))
		}
		return MapOf(out...), nil

	case KindObject:
		if _, ok := v.Scalar(); !ok {
			f := Finding{Kind: InvalidObjectType, Threat: ThreatInvalidObject}
			return Value{}, e.reject(ctx, f, mode, v)
		}
	}

	s, _ := v.Scalar()
	if s == "" {
		return String(s), nil
	}
	if f, bad := e.Inspect(s, mode); bad {
		return Value{}, e.reject(ctx, f, mode, v)
	}
	if encode {
		return String(EncodeHTML(s)), nil
	}
	return String(s), nil
}

func (e *Engine) reject(ctx context.Context, f Finding, mode Mode, original Value) error {
	inc := e.block(ctx, f.Threat, f.Kind, f.Category, original)
	return &Violation{
		Kind:     f.Kind,
		Mode:     mode,
		Category: f.Category,
		Threat:   f.Threat,
		Incident: inc,
	}
}

// Block records a threat and mints an incident for it. Callers use it for
// their own rejections (an invalid id, an unauthorized access attempt) and
// must stop processing the request afterwards. Logging failures never
// prevent the incident from being returned.
func (e *Engine) Block(ctx context.Context, threat string, original Value) *Incident {
	return e.block(ctx, threat, "", "", original)
}

func (e *Engine) block(ctx context.Context, threat string, kind ViolationKind, cat Category, original Value) *Incident {
	if ctx == nil {
		ctx = context.Background()
	}
	req, _ := RequestFromContext(ctx)

	inc := &Incident{
		ID:       e.newID(),
		Time:     e.now(),
		Threat:   threat,
		Kind:     kind,
		Category: cat,
		Request:  req.withDefaults(),
	}

	if e.logging {
		if err := e.sink.Write(ctx, e.record(inc, original)); err != nil {
			e.log.ErrorContext(ctx, "threat log write failed",
				logger.Component("waf"),
				logger.IncidentID(inc.ID),
				logger.Error(err),
			)
		}
	}

	e.log.WarnContext(ctx, "request blocked",
		logger.Component("waf"),
		logger.IncidentID(inc.ID),
		logger.Threat(threat),
		logger.Category(string(cat)),
		logger.ClientIP(inc.Request.ClientIP),
		logger.Method(inc.Request.Method),
		logger.Path(inc.Request.URI),
		logger.UserAgent(inc.Request.UserAgent),
		logger.RequestID(inc.Request.RequestID),
	)
	return inc
}

// record builds the log entry. Every string is HTML-encoded so the log is
// safe to render in an admin view.
func (e *Engine) record(inc *Incident, original Value) threatlog.Record {
	sample := original.sample()
	if original.IsNull() {
		sample = inc.Threat
	}
	return threatlog.Record{
		Timestamp:   EncodeHTML(inc.Time.Format(threatlog.TimeFormat)),
		IP:          EncodeHTML(inc.Request.ClientIP),
		UserAgent:   EncodeHTML(inc.Request.UserAgent),
		URI:         EncodeHTML(inc.Request.URI),
		Method:      EncodeHTML(inc.Request.Method),
		Threat:      EncodeHTML(inc.Threat),
		Category:    string(inc.Category),
		IncidentID:  inc.ID,
		RequestID:   EncodeHTML(inc.Request.RequestID),
		InputSample: EncodeHTML(threatlog.Sample(sample)),
		InputLength: len(sample),
	}
}
