package pool

import "log/slog"

// Policy selects what happens when an error class the caller is not expected
// to handle occurs.
type Policy int

const (
	// PolicyReturn returns every error to the caller.
	PolicyReturn Policy = iota

	// PolicyAbort panics on configuration errors, exhaustion and invalid
	// deallocation. Use it where a failed allocation means the system is
	// already misconfigured.
	PolicyAbort
)

func (p Policy) String() string {
	switch p {
	case PolicyReturn:
		return "return"
	case PolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Options configures an Allocator.
type Options struct {
	// Section guards every mutation and multi-field read.
	// Default: a new MutexSection
	Section CriticalSection

	// Policy selects return-error or panic on failure.
	// Default: PolicyReturn (PolicyAbort with the poolstrict build tag)
	Policy Policy

	// Debug keeps a per-block allocated tag so double frees are detected.
	// Default: false (true with the pooldebug build tag)
	Debug bool

	// Histograms enables the allocation-length and per-pool overflow histograms.
	// Default: false (true with the pooldebug build tag)
	Histograms bool

	// ContextProbe reports the execution context of the current caller. It is
	// only consulted on the failure path.
	// Default: always ContextTask
	ContextProbe func() ExecContext

	// Logger receives the committed layout at debug level. Allocation and
	// deallocation never log.
	// Default: nil (no logging)
	Logger *slog.Logger
}

// DefaultOptions returns the options used when New is given nil.
func DefaultOptions() Options {
	return Options{
		Policy:     defaultPolicy,
		Debug:      defaultDebug,
		Histograms: defaultHistograms,
	}
}

func taskContext() ExecContext { return ContextTask }

func (o *Options) fill() {
	if o.Section == nil {
		o.Section = &MutexSection{}
	}
	if o.ContextProbe == nil {
		o.ContextProbe = taskContext
	}
}
