// Package server runs the webhook service that triggers workflow runs on
// pull-request deliveries and reports the outcome as commit statuses.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"github.com/hervold/jukeboard/internal/ci/pipeline"
	"github.com/hervold/jukeboard/internal/infra/github"
)

// StatusPoster posts commit statuses for a run.
type StatusPoster interface {
	CreateStatus(ctx context.Context, owner, repo, sha, state, statusContext, description string) error
}

// Config configures the webhook service.
type Config struct {
	Runner        *pipeline.Runner
	Workflow      *pipeline.Workflow
	Statuses      StatusPoster
	Log           *slog.Logger
	Secret        []byte
	StatusContext string // prefix for per-job status contexts
	Workers       int
	QueueSize     int
}

// delivery is one accepted webhook event awaiting a worker.
type delivery struct {
	ev *pipeline.Event
}

// runHandle identifies an in-flight run so a newer delivery for the same
// pull request can cancel it.
type runHandle struct {
	cancel context.CancelFunc
}

// Server validates webhook deliveries, queues matching pull-request events,
// and runs the workflow on a bounded worker pool. A new delivery for a pull
// request cancels the in-flight run for that same pull request.
type Server struct {
	runner   *pipeline.Runner
	workflow *pipeline.Workflow
	statuses StatusPoster
	log      *slog.Logger
	secret   []byte
	ctxName  string

	queue    chan delivery
	mu       sync.Mutex
	inflight map[string]*runHandle
	workers  int
	wg       sync.WaitGroup
}

// New creates the webhook service.
func New(cfg Config) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.StatusContext == "" {
		cfg.StatusContext = "jukeboard-ci"
	}
	return &Server{
		runner:   cfg.Runner,
		workflow: cfg.Workflow,
		statuses: cfg.Statuses,
		log:      cfg.Log,
		secret:   cfg.Secret,
		ctxName:  cfg.StatusContext,
		queue:    make(chan delivery, cfg.QueueSize),
		inflight: make(map[string]*runHandle),
		workers:  cfg.Workers,
	}
}

// Handler returns the HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Start launches the worker pool. Workers exit when ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.work(ctx)
		}()
	}
}

// Wait blocks until every worker has exited.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Run starts the workers and serves HTTP on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.Start(ctx)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	s.log.Info("webhook service listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		s.Wait()
		return nil
	case err := <-errCh:
		return fmt.Errorf("webhook service: %w", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, "ok")
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	eventType, payload, err := github.ValidateWebhook(r, s.secret)
	if err != nil {
		s.log.Warn("rejected delivery", "error", err)
		http.Error(w, "invalid payload signature", http.StatusUnauthorized)
		return
	}
	if eventType != "pull_request" {
		s.respond(w, http.StatusOK, "ignored: "+eventType+" events are not handled")
		return
	}

	raw, err := gogithub.ParseWebHook(eventType, payload)
	if err != nil {
		s.log.Warn("malformed delivery", "error", err)
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}
	prEvent, ok := raw.(*gogithub.PullRequestEvent)
	if !ok {
		http.Error(w, "malformed payload", http.StatusBadRequest)
		return
	}

	ev := github.EventFromPullRequest(prEvent)
	if !s.workflow.Matches(ev) {
		s.log.Info("ignored delivery",
			"repo", ev.Repository(), "pr", ev.Number, "action", ev.Action, "base", ev.BaseRef)
		s.respond(w, http.StatusOK, "ignored: no matching trigger")
		return
	}

	// A newer delivery supersedes the in-flight run for the same PR.
	s.cancelInflight(deliveryKey(ev))

	select {
	case s.queue <- delivery{ev: ev}:
		s.log.Info("queued delivery", "repo", ev.Repository(), "pr", ev.Number, "sha", ev.HeadSHA)
		s.postQueued(r.Context(), ev)
		s.respond(w, http.StatusAccepted, "queued")
	default:
		s.log.Warn("queue full, delivery dropped", "repo", ev.Repository(), "pr", ev.Number)
		http.Error(w, "queue full", http.StatusServiceUnavailable)
	}
}

func (s *Server) respond(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	_, _ = fmt.Fprintln(w, msg)
}

// deliveryKey identifies the run slot a pull request occupies.
func deliveryKey(ev *pipeline.Event) string {
	return fmt.Sprintf("%s#%d", ev.Repository(), ev.Number)
}

func (s *Server) cancelInflight(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.inflight[key]; ok {
		h.cancel()
		delete(s.inflight, key)
	}
}

func (s *Server) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-s.queue:
			s.process(ctx, d)
		}
	}
}

func (s *Server) process(ctx context.Context, d delivery) {
	ev := d.ev
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := &runHandle{cancel: cancel}
	key := deliveryKey(ev)
	s.mu.Lock()
	if prev, ok := s.inflight[key]; ok {
		prev.cancel()
	}
	s.inflight[key] = h
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.inflight[key] == h {
			delete(s.inflight, key)
		}
		s.mu.Unlock()
	}()

	s.log.Info("run started", "repo", ev.Repository(), "pr", ev.Number, "sha", ev.HeadSHA)

	notify := func(jobID string, step int, status pipeline.Status) {
		if step != -1 || status != pipeline.StatusRunning {
			return
		}
		s.postStatus(ctx, ev, jobID, github.StatePending, "In progress")
	}
	res, err := s.runner.Run(runCtx, s.workflow, ev, pipeline.RunOptions{Notify: notify})
	if err != nil {
		s.log.Error("run failed", "repo", ev.Repository(), "pr", ev.Number, "error", err)
		for _, job := range s.workflow.Jobs {
			s.postStatus(ctx, ev, job.ID, github.StateError, "Run failed: "+err.Error())
		}
		return
	}

	superseded := runCtx.Err() != nil && ctx.Err() == nil
	for _, job := range res.Jobs {
		state, desc := finalStatus(job, superseded)
		s.postStatus(ctx, ev, job.ID, state, desc)
	}
	s.log.Info("run finished",
		"repo", ev.Repository(), "pr", ev.Number, "failed", res.Failed(), "elapsed", res.Elapsed)
}

// postQueued marks every job pending as soon as the delivery is accepted.
func (s *Server) postQueued(ctx context.Context, ev *pipeline.Event) {
	for _, job := range s.workflow.Jobs {
		s.postStatus(ctx, ev, job.ID, github.StatePending, "Queued")
	}
}

func (s *Server) postStatus(ctx context.Context, ev *pipeline.Event, jobID, state, description string) {
	if ev.HeadSHA == "" {
		return
	}
	statusCtx := s.ctxName + "/" + jobID
	if err := s.statuses.CreateStatus(ctx, ev.Owner, ev.Repo, ev.HeadSHA, state, statusCtx, description); err != nil {
		s.log.Warn("post status failed",
			"repo", ev.Repository(), "sha", ev.HeadSHA, "context", statusCtx, "error", err)
	}
}

// finalStatus maps a settled job onto a commit status. A job killed by a
// superseding delivery reports error rather than failure so the status is
// not mistaken for a genuine red run.
func finalStatus(job *pipeline.JobResult, superseded bool) (string, string) {
	switch job.Status {
	case pipeline.StatusSuccess:
		return github.StateSuccess, fmt.Sprintf("Succeeded in %s", job.Elapsed.Round(time.Millisecond))
	case pipeline.StatusFailure:
		if superseded {
			return github.StateError, "Superseded by a newer delivery"
		}
		if fs := job.FailedStep(); fs != nil {
			return github.StateFailure, fmt.Sprintf("Failed at %q (exit %d)", fs.Name, fs.ExitCode)
		}
		if job.Note != "" {
			return github.StateFailure, job.Note
		}
		return github.StateFailure, "Failed"
	default:
		return github.StateError, "Did not settle: " + job.Status.Display()
	}
}
