package redgreen

import (
	"log/slog"
	"time"
)

const (
	// DefaultFixRetryLimit is the number of auto-fix attempts after a failed
	// green verification.
	DefaultFixRetryLimit = 2

	// MaxFixRetryLimit caps WithFixRetryLimit.
	MaxFixRetryLimit = 5

	// DefaultStallThreshold is the number of consecutive identical failure
	// fingerprints after which the auto-fix loop gives up early. The exact
	// cut-off is a policy knob, not a hard-coded rule; see WithStallThreshold.
	DefaultStallThreshold = 1

	// GuidanceAttemptLimit is the number of user-guidance rounds offered
	// before the step is rolled back.
	GuidanceAttemptLimit = 3

	// DefaultPollInterval is the delay between pause/guidance polls.
	DefaultPollInterval = 200 * time.Millisecond
)

// DefaultCoverageThresholds requires full coverage on every metric.
func DefaultCoverageThresholds() Coverage {
	return Coverage{Lines: 100, Statements: 100, Functions: 100, Branches: 100}
}

// Engine drives the red/green/refactor autopilot cycle: plan a goal into
// steps, run each step through a test-first loop against the shared
// workspace, then commit and merge.
type Engine struct {
	planner  Planner
	editor   Editor
	workflow Workflow

	engineConfig
}

type engineConfig struct {
	logger *slog.Logger

	updates        UpdateSource
	eventSink      EventSink
	statusReporter StatusReporter

	shouldCancel func() bool
	shouldPause  func() bool

	thresholds       Coverage
	fixRetryLimit    int
	stallThreshold   int
	guidanceBlocking bool
	pollInterval     time.Duration
}

func (c *engineConfig) Clone() *engineConfig {
	clone := *c
	return &clone
}

// New creates an autopilot engine wired to the given collaborators.
func New(planner Planner, editor Editor, workflow Workflow, options ...Option) *Engine {
	x := &Engine{
		planner:  planner,
		editor:   editor,
		workflow: workflow,
		engineConfig: engineConfig{
			logger:         slog.New(slog.DiscardHandler),
			thresholds:     DefaultCoverageThresholds(),
			fixRetryLimit:  DefaultFixRetryLimit,
			stallThreshold: DefaultStallThreshold,
			pollInterval:   DefaultPollInterval,
		},
	}

	for _, opt := range options {
		opt(&x.engineConfig)
	}

	x.logger.Info("redgreen engine created",
		"fix_retry_limit", x.fixRetryLimit,
		"stall_threshold", x.stallThreshold,
		"guidance_blocking", x.guidanceBlocking,
		"has_update_source", x.updates != nil,
		"has_event_sink", x.eventSink != nil,
	)

	return x
}

// Option is the type for the options of the engine.
type Option func(*engineConfig)

// WithLogger sets the logger for the engine. Default is discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithUpdateSource sets the channel of live user updates. Without a source
// the engine never pauses for guidance and drains are no-ops.
func WithUpdateSource(src UpdateSource) Option {
	return func(c *engineConfig) {
		c.updates = src
	}
}

// WithEventSink sets the timeline event sink.
func WithEventSink(sink EventSink) Option {
	return func(c *engineConfig) {
		c.eventSink = sink
	}
}

// WithStatusReporter sets the progress text reporter.
func WithStatusReporter(reporter StatusReporter) Option {
	return func(c *engineConfig) {
		c.statusReporter = reporter
	}
}

// WithCancelCheck sets the cancellation predicate. It is polled at every
// safe boundary and before every externally visible side effect.
func WithCancelCheck(check func() bool) Option {
	return func(c *engineConfig) {
		c.shouldCancel = check
	}
}

// WithPauseCheck sets the pause predicate. While it reports true the engine
// blocks at the next safe boundary, still draining user updates.
func WithPauseCheck(check func() bool) Option {
	return func(c *engineConfig) {
		c.shouldPause = check
	}
}

// WithCoverageThresholds overrides the coverage thresholds passed to every
// test run. Default is 100 across all metrics.
func WithCoverageThresholds(thresholds Coverage) Option {
	return func(c *engineConfig) {
		c.thresholds = thresholds
	}
}

// WithFixRetryLimit sets the auto-fix attempt count, clamped to 0..5.
func WithFixRetryLimit(limit int) Option {
	return func(c *engineConfig) {
		if limit < 0 {
			limit = 0
		}
		if limit > MaxFixRetryLimit {
			limit = MaxFixRetryLimit
		}
		c.fixRetryLimit = limit
	}
}

// WithStallThreshold sets how many consecutive repeated failure fingerprints
// abort the auto-fix loop. Values below 1 are treated as 1.
func WithStallThreshold(threshold int) Option {
	return func(c *engineConfig) {
		if threshold < 1 {
			threshold = 1
		}
		c.stallThreshold = threshold
	}
}

// WithGuidanceBlocking makes the guidance escalation poll indefinitely for a
// user reply instead of sampling the update source once per attempt.
func WithGuidanceBlocking(blocking bool) Option {
	return func(c *engineConfig) {
		c.guidanceBlocking = blocking
	}
}

// WithPollInterval sets the pause/guidance poll delay.
func WithPollInterval(interval time.Duration) Option {
	return func(c *engineConfig) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// run holds the mutable state of one Run invocation: the step queue, the
// pending replan marker and the branch. It lives on a single goroutine; the
// workspace is a single mutable resource and no two steps ever overlap.
type run struct {
	cfg      *engineConfig
	planner  Planner
	editor   Editor
	workflow Workflow

	projectID  string
	parentGoal string
	branch     string

	queue    []string
	replan   *replanMarker
	children []string
}
