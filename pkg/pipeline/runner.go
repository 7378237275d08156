// Package pipeline runs one capture → classify → extract → write sequence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/snapcal/pkg/apperr"
	"github.com/harrisonrobin/snapcal/pkg/capture"
	appLog "github.com/harrisonrobin/snapcal/pkg/log"
	"github.com/harrisonrobin/snapcal/pkg/model"
	"github.com/harrisonrobin/snapcal/pkg/report"
	"github.com/harrisonrobin/snapcal/pkg/util"
)

type Classifier interface {
	Classify(ctx context.Context, payload capture.Payload) (model.Intent, error)
}

type Extractor interface {
	ExtractEvent(ctx context.Context, details string, now time.Time) (*model.Event, error)
	ExtractTask(ctx context.Context, details string, lists []string) (*model.TaskDraft, error)
}

type EventWriter interface {
	CreateEvent(ctx context.Context, ev *model.Event) (*calendar.Event, error)
}

type TaskWriter interface {
	ListTaskLists(ctx context.Context) ([]model.TaskList, error)
	CreateTaskList(ctx context.Context, title string) (model.TaskList, error)
	CreateTask(ctx context.Context, listID string, draft *model.TaskDraft) (*tasks.Task, error)
}

// ErrBusy is returned when Run is called while another run is in flight.
var ErrBusy = errors.New("a run is already in progress")

var errNotLoggedIn = errors.New("please log in first")

// Runner holds the collaborators for a run. It keeps no per-run state, so
// every Run starts from a fresh screenshot.
type Runner struct {
	Source     capture.Source
	Compress   capture.Options
	Classifier Classifier
	Extractor  Extractor
	Events     EventWriter
	Tasks      TaskWriter
	Reporter   *report.Reporter

	// DryRun stops after extraction.
	DryRun bool
	// ExportICS, when set, receives every extracted event.
	ExportICS func(ev *model.Event, now time.Time) error

	Now func() time.Time

	mu sync.Mutex
}

// Result describes what a run produced.
type Result struct {
	RunID string
	Kind  model.IntentKind

	Event     *model.Event
	EventID   string
	EventLink string

	Task        *model.TaskDraft
	TaskListID  string
	TaskID      string
	CreatedList bool
}

// Run executes one full sequence. Every failure is reported in red and
// returned; nothing is retried.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.mu.TryLock() {
		return nil, ErrBusy
	}
	defer r.mu.Unlock()

	res := &Result{RunID: uuid.NewString()}
	logger := appLog.With("run", res.RunID)

	err := r.run(ctx, res, logger)
	if err != nil {
		logger.Error("run failed", err, "kind", string(apperr.KindOf(err)))
		r.reporter().Error(userMessage(err))
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, res *Result, logger *appLog.Logger) error {
	rep := r.reporter()

	rep.Status("Taking screenshot...")
	raw, err := r.Source.Capture(ctx)
	if err != nil {
		return err
	}
	payload, err := capture.Compress(raw, r.Compress)
	if err != nil {
		return err
	}
	logger.Debug("screenshot compressed", "width", payload.Width, "height", payload.Height, "bytes", len(payload.Data))

	rep.Status("Identifying intent...")
	intent, err := r.Classifier.Classify(ctx, payload)
	if err != nil {
		return err
	}
	res.Kind = intent.Type
	logger.Info("intent classified", "type", string(intent.Type), "details", intent.Details)

	rep.Status(fmt.Sprintf("Creating %s...", intent.Type))
	switch intent.Type {
	case model.IntentEvent:
		return r.createEvent(ctx, intent, res, logger)
	case model.IntentTask:
		return r.createTask(ctx, intent, res, logger)
	default:
		return apperr.New(apperr.ClassificationError, "classify screenshot", model.ErrNoIntent)
	}
}

func (r *Runner) createEvent(ctx context.Context, intent model.Intent, res *Result, logger *appLog.Logger) error {
	rep := r.reporter()
	now := r.now()

	if r.Events == nil && !r.DryRun {
		return apperr.New(apperr.AuthError, "create event", errNotLoggedIn)
	}

	ev, err := r.Extractor.ExtractEvent(ctx, intent.Details, now)
	if err != nil {
		return err
	}
	res.Event = ev
	logger.Info("event extracted", "event", util.Describe(ev))

	if r.ExportICS != nil {
		if err := r.ExportICS(ev, now); err != nil {
			logger.Warn("ics export failed", "err", err)
		}
	}
	if r.DryRun {
		rep.Success("Extracted event: " + util.Describe(ev))
		return nil
	}

	rep.Status("Almost done...")
	created, err := r.Events.CreateEvent(ctx, ev)
	if err != nil {
		return err
	}
	res.EventID = created.Id
	res.EventLink = created.HtmlLink
	logger.Info("event created", "id", created.Id, "link", created.HtmlLink)
	rep.Success("Event created successfully")
	return nil
}

func (r *Runner) createTask(ctx context.Context, intent model.Intent, res *Result, logger *appLog.Logger) error {
	rep := r.reporter()

	if r.Tasks == nil && !r.DryRun {
		return apperr.New(apperr.AuthError, "create task", errNotLoggedIn)
	}

	// The lists are needed to steer the extractor; without them the run stops
	// before any model call or write. A dry run without a Tasks client
	// extracts against no lists.
	var lists []model.TaskList
	if r.Tasks != nil {
		var err error
		lists, err = r.Tasks.ListTaskLists(ctx)
		if err != nil {
			return err
		}
	}

	draft, err := r.Extractor.ExtractTask(ctx, intent.Details, model.ListTitles(lists))
	if err != nil {
		return err
	}
	res.Task = draft
	logger.Info("task extracted", "title", draft.Title, "list", draft.TaskListName)

	if r.DryRun {
		rep.Success(fmt.Sprintf("Extracted task: %s (list %s)", draft.Title, draft.TaskListName))
		return nil
	}

	rep.Status("Almost done...")
	list, ok := model.FindList(lists, draft.TaskListName)
	if !ok {
		list, err = r.Tasks.CreateTaskList(ctx, draft.TaskListName)
		if err != nil {
			return err
		}
		res.CreatedList = true
		logger.Info("task list created", "id", list.ID, "title", list.Title)
	}
	res.TaskListID = list.ID

	// A list created above stays even if this fails.
	created, err := r.Tasks.CreateTask(ctx, list.ID, draft)
	if err != nil {
		return err
	}
	res.TaskID = created.Id
	logger.Info("task created", "id", created.Id, "list", list.ID)
	rep.Success("Task created successfully")
	return nil
}

func (r *Runner) reporter() *report.Reporter {
	if r.Reporter == nil {
		r.Reporter = report.New(nil, false)
	}
	return r.Reporter
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// userMessage is the red status line shown for err.
func userMessage(err error) string {
	var e *apperr.Error
	if !errors.As(err, &e) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "Cancelled."
		}
		return fmt.Sprintf("Error: %v", err)
	}
	switch e.Kind {
	case apperr.CaptureError:
		return fmt.Sprintf("Could not take a screenshot: %v", e.Err)
	case apperr.DecodeError:
		return fmt.Sprintf("Could not read the screenshot: %v", e.Err)
	case apperr.ClassificationError:
		if errors.Is(e.Err, model.ErrNoIntent) {
			return "No relevant entry found."
		}
		return fmt.Sprintf("Could not find an intent: %v", e.Err)
	case apperr.ExtractionError:
		return fmt.Sprintf("Failed structured extraction: %v", e.Err)
	case apperr.RemoteWriteError:
		return fmt.Sprintf("Failed to save: %v", e.Err)
	case apperr.AuthError:
		return fmt.Sprintf("Not authorized: %v", e.Err)
	default:
		return e.Error()
	}
}
