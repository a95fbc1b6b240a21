// Package registry executes chat commands against the project store.
//
// A Service owns the in-memory store and its persistence backend. Each call
// to Execute parses one line of text, applies it, saves the full table after
// any successful mutation and returns exactly one reply:
//
//	svc := registry.New(project.NewStore(), backend, registry.WithLocale(registry.LocaleRU))
//	if err := svc.Load(ctx); err != nil {
//	    return err
//	}
//	reply, err := svc.Execute(ctx, chatID, "/add Victory Park, Litter on the paths, A. Ivanov, 2025-05-01")
//	if errors.Is(err, command.ErrNotCommand) {
//	    return nil // plain chatter gets no reply
//	}
//	send(chatID, reply.Text)
//
// Calls are serialized behind one mutex, so transports may call Execute from
// any number of goroutines. A failed save is logged and counted but never
// reported to the chat; the in-memory change is kept and the next successful
// save catches the file up.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/impactd/internal/command"
	"github.com/fyrsmithlabs/impactd/internal/events"
	"github.com/fyrsmithlabs/impactd/internal/logging"
	"github.com/fyrsmithlabs/impactd/internal/project"
	"github.com/fyrsmithlabs/impactd/internal/storage"
)

const instrumentationName = "github.com/fyrsmithlabs/impactd/internal/registry"

// DefaultDashboardURL is used when no dashboard address is configured.
const DefaultDashboardURL = "http://127.0.0.1:8050/"

// Outcome classifies a reply for metrics and transports.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeInvalid        Outcome = "invalid"
	OutcomeUnknownCommand Outcome = "unknown_command"
	OutcomeDuplicate      Outcome = "duplicate"
)

// Reply is the single message sent back for one command.
type Reply struct {
	Text    string  `json:"text"`
	Outcome Outcome `json:"outcome"`

	// ProjectID is the project the command addressed, 0 if none.
	ProjectID int `json:"project_id,omitempty"`
}

// Service executes commands. The zero value is not usable; call New.
type Service struct {
	mu      sync.Mutex
	store   *project.Store
	backend storage.Backend
	ids     idAllocator

	locale       Locale
	cat          *catalog
	dashboardURL string

	logger    *logging.Logger
	metrics   *Metrics
	publisher events.Publisher
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the operational logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l.Named("registry")
		}
	}
}

// WithMetrics sets the Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithTracer sets the tracer used for command spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithLocale selects the reply language and default labels.
func WithLocale(l Locale) Option {
	return func(s *Service) {
		if c, ok := catalogs[l]; ok {
			s.locale, s.cat = l, c
		}
	}
}

// WithIDPolicy selects how new IDs are issued.
func WithIDPolicy(p IDPolicy) Option {
	return func(s *Service) { s.ids.policy = p }
}

// WithDashboardURL sets the link returned by /dashboard.
func WithDashboardURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.dashboardURL = url
		}
	}
}

// New creates a Service over store. A nil store starts empty; a nil backend
// keeps everything in memory.
func New(store *project.Store, backend storage.Backend, opts ...Option) *Service {
	if store == nil {
		store = project.NewStore()
	}
	s := &Service{
		store:        store,
		backend:      backend,
		ids:          idAllocator{policy: IDSequence},
		locale:       LocaleEN,
		cat:          catalogs[LocaleEN],
		dashboardURL: DefaultDashboardURL,
		logger:       logging.NewNop(),
		publisher:    events.Nop{},
		tracer:       otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	s.ids.observe(store.MaxID())
	s.metrics.Projects.Set(float64(store.Len()))
	return s
}

// Load replaces the store contents with the backend's.
func (s *Service) Load(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.backend.Load(ctx)
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}
	s.store.Reset(entries)
	s.ids.observe(s.store.MaxID())
	s.metrics.Projects.Set(float64(s.store.Len()))

	s.logger.Info(ctx, "projects loaded",
		zap.Int("count", s.store.Len()),
		zap.Int("max_id", s.store.MaxID()),
		zap.String("id_policy", string(s.ids.policy)),
	)
	return nil
}

// Execute runs one line of chat text. It returns command.ErrNotCommand, and
// no reply, when text is not a slash command. Every other outcome, failures
// included, is a Reply.
func (s *Service) Execute(ctx context.Context, chatID, text string) (Reply, error) {
	start := time.Now()

	cmd, err := command.Parse(text)
	if errors.Is(err, command.ErrNotCommand) {
		return Reply{}, err
	}

	ctx = logging.WithChatID(ctx, chatID)
	if logging.RequestIDFromContext(ctx) == "" {
		ctx = logging.WithRequestID(ctx, uuid.New().String())
	}

	name := commandName(cmd, err)
	ctx, span := s.tracer.Start(ctx, "registry.execute",
		trace.WithAttributes(attribute.String("command", name)))
	defer span.End()

	if err != nil {
		s.logger.Trace(ctx, "command rejected by parser", zap.String("command", name), zap.Error(err))
	} else {
		s.logger.Trace(ctx, "command parsed", zap.String("command", name), zap.Int("text_len", len(text)))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var reply Reply
	if err != nil {
		reply = s.rejected(err)
	} else {
		var ev *events.Event
		reply, ev = s.dispatch(ctx, cmd)
		if command.Mutates(cmd) && reply.Outcome == OutcomeOK {
			s.persist(ctx)
			if ev != nil {
				s.publish(ctx, chatID, *ev)
			}
		}
	}

	span.SetAttributes(attribute.String("outcome", string(reply.Outcome)))
	if reply.ProjectID > 0 {
		span.SetAttributes(attribute.Int("project.id", reply.ProjectID))
	}
	s.metrics.CommandsTotal.WithLabelValues(name, string(reply.Outcome)).Inc()
	s.metrics.CommandDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	s.logger.Debug(ctx, "command handled",
		zap.String("command", name),
		zap.String("outcome", string(reply.Outcome)),
		zap.Int("project_id", reply.ProjectID),
	)
	return reply, nil
}

// commandName is the metric label for a parsed or rejected command.
func commandName(cmd command.Command, err error) string {
	if cmd != nil {
		return string(cmd.Keyword())
	}
	var perr *command.ParseError
	if errors.As(err, &perr) && perr.Kind != command.KindUnknownCommand {
		return string(perr.Keyword)
	}
	return "unknown"
}

// rejected renders a parse failure.
func (s *Service) rejected(err error) Reply {
	var perr *command.ParseError
	if !errors.As(err, &perr) {
		return Reply{Text: s.cat.unknownCommand, Outcome: OutcomeUnknownCommand}
	}

	switch perr.Kind {
	case command.KindUnknownCommand:
		return Reply{Text: s.cat.unknownCommand, Outcome: OutcomeUnknownCommand}
	case command.KindUnknownField:
		// The target is resolved before the field name.
		if _, ok := s.store.Get(perr.ID); !ok {
			return s.notFound(perr.ID)
		}
		return Reply{Text: s.cat.renderUnknownField(), Outcome: OutcomeInvalid, ProjectID: perr.ID}
	default:
		return Reply{Text: s.cat.renderParseError(perr), Outcome: OutcomeInvalid}
	}
}

// dispatch applies cmd to the store. A successful mutation also returns the
// event to publish once the table is saved.
func (s *Service) dispatch(ctx context.Context, cmd command.Command) (Reply, *events.Event) {
	switch c := cmd.(type) {
	case command.Help:
		return Reply{Text: s.cat.help, Outcome: OutcomeOK}, nil

	case command.Dashboard:
		return Reply{Text: fmt.Sprintf(s.cat.dashboard, s.dashboardURL), Outcome: OutcomeOK}, nil

	case command.List:
		return Reply{Text: s.cat.renderList(s.store.Entries()), Outcome: OutcomeOK}, nil

	case command.Info:
		p, ok := s.store.Get(c.ID)
		if !ok {
			return s.notFound(c.ID), nil
		}
		return Reply{Text: s.cat.renderCard(c.ID, p), Outcome: OutcomeOK, ProjectID: c.ID}, nil

	case command.Add:
		return s.add(ctx, c)

	case command.Update:
		return s.mutate(c.ID, events.ActionUpdated, string(c.Field),
			func(p *project.Project) { p.Set(c.Field, c.Value) },
			fmt.Sprintf(s.cat.updated, c.ID))

	case command.SetStatus:
		return s.mutate(c.ID, events.ActionStatus, string(project.FieldStatus),
			func(p *project.Project) { p.Status = c.Status },
			fmt.Sprintf(s.cat.statusSet, c.ID, c.Status))

	case command.Assign:
		return s.mutate(c.ID, events.ActionAssigned, string(project.FieldExecutor),
			func(p *project.Project) { p.Executor = c.Executor },
			fmt.Sprintf(s.cat.assigned, c.ID, c.Executor))

	case command.Delete:
		if err := s.store.Remove(c.ID); err != nil {
			return s.notFound(c.ID), nil
		}
		ev := events.NewEvent(events.ActionDeleted, c.ID, nil)
		return Reply{Text: fmt.Sprintf(s.cat.deleted, c.ID), Outcome: OutcomeOK, ProjectID: c.ID}, &ev

	default:
		return Reply{Text: s.cat.unknownCommand, Outcome: OutcomeUnknownCommand}, nil
	}
}

func (s *Service) add(ctx context.Context, c command.Add) (Reply, *events.Event) {
	p, err := project.NewProject(c.Name, c.Problem, c.Initiator, c.Deadline, s.cat.defaultStatus, s.cat.defaultExecutor)
	if err != nil {
		return Reply{Text: s.cat.usage[command.KeywordAdd], Outcome: OutcomeInvalid}, nil
	}

	id := s.ids.next(s.store)
	if err := s.store.Insert(id, p); err != nil {
		s.logger.Warn(ctx, "new project id collides with a live project",
			zap.Int("project_id", id),
			zap.String("id_policy", string(s.ids.policy)),
			zap.Error(err),
		)
		return Reply{Text: fmt.Sprintf(s.cat.duplicate, id), Outcome: OutcomeDuplicate, ProjectID: id}, nil
	}
	s.ids.observe(id)

	ev := events.NewEvent(events.ActionCreated, id, &p)
	return Reply{Text: fmt.Sprintf(s.cat.created, id), Outcome: OutcomeOK, ProjectID: id}, &ev
}

// mutate applies fn to project id.
func (s *Service) mutate(id int, action events.Action, field string, fn func(*project.Project), confirm string) (Reply, *events.Event) {
	if err := s.store.Update(id, fn); err != nil {
		return s.notFound(id), nil
	}

	p, _ := s.store.Get(id)
	ev := events.NewEvent(action, id, &p)
	ev.Field = field
	return Reply{Text: confirm, Outcome: OutcomeOK, ProjectID: id}, &ev
}

func (s *Service) notFound(id int) Reply {
	return Reply{Text: fmt.Sprintf(s.cat.notFound, id), Outcome: OutcomeNotFound, ProjectID: id}
}

// persist saves the full table. Failures stay in the operational log.
func (s *Service) persist(ctx context.Context) {
	s.metrics.Projects.Set(float64(s.store.Len()))
	if s.backend == nil {
		return
	}
	if err := s.backend.Save(ctx, s.store.Entries()); err != nil {
		s.metrics.PersistFailures.Inc()
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		s.logger.Error(ctx, "failed to persist projects, keeping in-memory state",
			zap.Int("count", s.store.Len()),
			zap.Error(err),
		)
	}
}

func (s *Service) publish(ctx context.Context, chatID string, ev events.Event) {
	ev.ChatID = chatID
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.EventFailures.Inc()
		s.logger.Warn(ctx, "failed to publish project event",
			zap.String("action", string(ev.Action)),
			zap.Int("project_id", ev.ProjectID),
			zap.Error(err),
		)
	}
}

// Snapshot returns a copy of every entry in store order.
func (s *Service) Snapshot() []project.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Entries()
}

// Project returns one project by ID.
func (s *Service) Project(id int) (project.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// Stats aggregates the store for the dashboard.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByExecutor map[string]int `json:"by_executor"`
	Executors  []string       `json:"executors"`
}

// Stats counts projects per status and per executor.
func (s *Service) Stats() Stats {
	entries := s.Snapshot()
	st := Stats{
		Total:      len(entries),
		ByStatus:   make(map[string]int),
		ByExecutor: make(map[string]int),
		Executors:  []string{},
	}
	for _, e := range entries {
		st.ByStatus[e.Project.Status]++
		if st.ByExecutor[e.Project.Executor] == 0 {
			st.Executors = append(st.Executors, e.Project.Executor)
		}
		st.ByExecutor[e.Project.Executor]++
	}
	sort.Strings(st.Executors)
	return st
}

// Locale reports the reply language.
func (s *Service) Locale() Locale {
	return s.locale
}
