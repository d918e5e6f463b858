package parts

import (
	"sort"
	"strings"

	"partsdesk/internal/logging"
	"partsdesk/internal/metrics"
)

// CompanyProfile binds a sender to the strategies tried before the generic chain.
type CompanyProfile struct {
	Name       string
	Domains    []string
	Strategies []Strategy
}

type Registry struct {
	profiles map[string]CompanyProfile
	domains  map[string]string
}

func NewRegistry(profiles ...CompanyProfile) *Registry {
	r := &Registry{profiles: map[string]CompanyProfile{}, domains: map[string]string{}}
	for _, p := range profiles {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p CompanyProfile) {
	r.profiles[p.Name] = p
	for _, d := range p.Domains {
		r.domains[strings.ToLower(strings.TrimSpace(d))] = p.Name
	}
}

func (r *Registry) Lookup(name string) (CompanyProfile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

func (r *Registry) Detect(from string) (CompanyProfile, bool) {
	name, ok := DetectAirline(from, r.domains)
	if !ok {
		return CompanyProfile{}, false
	}
	return r.Lookup(name)
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

type Dispatcher struct {
	registry     *Registry
	logger       logging.Logger
	metrics      *metrics.Metrics
	maxBodyChars int
}

type Option func(*Dispatcher)

func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithMaxBodyChars bounds the text handed to the freeform parser.
func WithMaxBodyChars(n int) Option {
	return func(d *Dispatcher) { d.maxBodyChars = n }
}

func NewDispatcher(registry *Registry, opts ...Option) *Dispatcher {
	if registry == nil {
		registry = NewRegistry()
	}
	d := &Dispatcher{registry: registry, logger: logging.Nop(), maxBodyChars: 200_000}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Parse runs the strategy chain for one email and never fails: a broken strategy counts as
// an empty result.
func (d *Dispatcher) Parse(email RawEmail) ParsingResult {
	result := ParsingResult{Orders: []PartRequestRecord{}}

	chain := []Strategy{}
	if profile, ok := d.registry.Detect(email.FromEmail); ok {
		name := profile.Name
		result.Airline = &name
		chain = append(chain, profile.Strategies...)
	}
	chain = append(chain, GenericTableStrategy(), FreeformStrategy(d.maxBodyChars))

	for _, s := range chain {
		records := d.run(s, email)
		if len(records) == 0 {
			continue
		}
		result.Orders = records
		result.Strategy = s.Name
		break
	}

	body := truncate(bodyText(email), d.maxBodyChars)
	for i := range result.Orders {
		result.Orders[i].Priority = classifyRecord(email.Subject, body, result.Orders[i])
	}
	result.IsAviationRequest = len(result.Orders) > 0 || IsAviationText(body)

	d.metrics.ObserveParse(result.Strategy, len(result.Orders))
	d.logger.Debug("email parsed",
		"from", email.FromEmail,
		"airline", derefName(result.Airline),
		"strategy", result.Strategy,
		"orders", len(result.Orders),
		"aviation", result.IsAviationRequest)
	return result
}

func (d *Dispatcher) run(s Strategy, email RawEmail) (records []PartRequestRecord) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.ObservePanic()
			d.logger.Error("parser strategy panicked", "strategy", s.Name, "from", email.FromEmail, "panic", r)
			records = nil
		}
	}()

	out, err := s.Parse(email)
	if err != nil {
		d.logger.Warn("parser strategy failed", "strategy", s.Name, "from", email.FromEmail, "error", err)
		return nil
	}
	return out
}

func derefName(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
