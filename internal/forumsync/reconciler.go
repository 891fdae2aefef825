// Package forumsync reconciles the canonical task set with the threads of a
// forum channel.
package forumsync

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/forumsync/internal/core/forum"
	"github.com/colonyops/forumsync/internal/core/logging"
)

// Report summarises the outcome of one reconciliation pass.
type Report struct {
	PassID   string        `json:"pass_id"`
	Tasks    int           `json:"tasks"`
	Created  int           `json:"created"`
	Renamed  int           `json:"renamed"`
	Edited   int           `json:"edited"`
	Posted   int           `json:"posted"`
	Removed  int           `json:"removed"`
	Archived int           `json:"archived"`
	Migrated int           `json:"migrated"`
	Orphaned int           `json:"orphaned"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Saved    bool          `json:"saved"`
	Duration time.Duration `json:"duration"`
}

// Mutations returns the number of remote changes the pass made.
func (r Report) Mutations() int {
	return r.Created + r.Renamed + r.Edited + r.Posted + r.Removed + r.Archived
}

// Reconciler drives the forum toward the task set. It keeps no mapping between
// passes: every Run reloads it from the MappingStore.
type Reconciler struct {
	tasks    forum.TaskSource
	gateway  forum.ThreadGateway
	mappings forum.MappingStore
	controls forum.ControlRegistry
	parentID string
	log      zerolog.Logger
}

// NewReconciler creates a Reconciler for the forum channel parentID. controls
// may be nil, in which case control descriptors are not recorded.
func NewReconciler(
	tasks forum.TaskSource,
	gw forum.ThreadGateway,
	mappings forum.MappingStore,
	controls forum.ControlRegistry,
	parentID string,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		tasks:    tasks,
		gateway:  gw,
		mappings: mappings,
		controls: controls,
		parentID: parentID,
		log:      log.With().Str("component", "reconciler").Logger(),
	}
}

// threadState is the outcome of resolving a mapped thread id against the forum.
type threadState int

const (
	threadUnmapped threadState = iota
	threadLive
	threadGone
	threadUnresolved
)

// pass holds the state of a single Run.
type pass struct {
	r       *Reconciler
	mapping forum.Mapping
	index   ThreadIndex
	dirty   bool
	report  Report
	// tried holds threads whose removal was already attempted this pass.
	tried map[string]bool
}

// Run performs one reconciliation pass. Individual remote failures are logged
// and counted in the report; an error is returned only when nothing could be
// reconciled at all.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	if r.parentID == "" {
		r.log.Debug().Msg("no forum channel configured, skipping sync")
		return Report{}, nil
	}

	start := time.Now()
	p := &pass{r: r, report: Report{PassID: uuid.NewString()}, tried: map[string]bool{}}
	ctx = logging.WithPassID(ctx, p.report.PassID)

	if pc, ok := r.gateway.(forum.ParentChecker); ok {
		if err := pc.CheckParent(ctx, r.parentID); err != nil {
			r.log.Warn().Ctx(ctx).Err(err).Str("parent_id", r.parentID).Msg("forum channel unavailable, skipping sync")
			return p.report, fmt.Errorf("check forum channel %s: %w", r.parentID, err)
		}
	}

	p.mapping = r.loadMapping(ctx)

	tasks, err := r.tasks.ListAll(ctx)
	if err != nil {
		return p.report, fmt.Errorf("list tasks: %w", err)
	}
	slices.SortStableFunc(tasks, forum.Compare)
	p.report.Tasks = len(tasks)

	p.index = BuildThreadIndex(ctx, r.gateway, r.parentID, r.log)

	byKey := make(map[string]forum.Task, len(tasks))
	for _, task := range tasks {
		byKey[task.Key()] = task
		p.reconcileTask(logging.WithTaskKey(ctx, task.Key()), task)
	}

	p.reverseScan(ctx, byKey)
	p.orphanScan(ctx, byKey)

	if p.mapping.Normalize() {
		p.dirty = true
	}
	if p.dirty {
		if err := r.mappings.Save(ctx, p.mapping); err != nil {
			r.log.Error().Ctx(ctx).Err(err).Msg("failed to save forum mappings")
		} else {
			p.report.Saved = true
		}
	}

	p.report.Duration = time.Since(start)
	r.log.Info().Ctx(ctx).
		Int("tasks", p.report.Tasks).
		Int("created", p.report.Created).
		Int("renamed", p.report.Renamed).
		Int("edited", p.report.Edited).
		Int("removed", p.report.Removed+p.report.Archived).
		Int("migrated", p.report.Migrated).
		Int("orphaned", p.report.Orphaned).
		Int("failed", p.report.Failed).
		Dur("duration", p.report.Duration).
		Msg("forum sync complete")

	return p.report, nil
}

func (r *Reconciler) loadMapping(ctx context.Context) forum.Mapping {
	m, err := r.mappings.Load(ctx)
	if err != nil {
		r.log.Error().Ctx(ctx).Err(err).Msg("failed to load forum mappings, starting from empty")
		return forum.NewMapping()
	}
	if m.TaskToThread == nil || m.ThreadToTask == nil {
		m = m.Clone()
	}
	return m
}

// resolveThread looks a mapped thread up in the index, falling back to a
// direct fetch for threads the listings missed.
func (p *pass) resolveThread(ctx context.Context, threadID string) (forum.RemoteThread, threadState) {
	if th, ok := p.index[threadID]; ok {
		return th, threadLive
	}

	th, err := p.r.gateway.FetchThread(ctx, threadID)
	switch {
	case err == nil:
		return th, threadLive
	case forum.IsNotFound(err):
		return forum.RemoteThread{}, threadGone
	default:
		p.r.log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).Msg("could not fetch thread")
		return forum.RemoteThread{}, threadUnresolved
	}
}

func (p *pass) reconcileTask(ctx context.Context, task forum.Task) {
	log := p.r.log

	if !task.HasCanonicalKey() {
		log.Warn().Ctx(ctx).Str("task", task.Name).Msg("task has no uuid, falling back to legacy key")
	}

	res := p.mapping.ResolveKey(task)
	if res.Kind == forum.KeyMigrated {
		p.dirty = true
		p.report.Migrated++
		log.Info().Ctx(ctx).
			Str("legacy_key", res.LegacyKey).
			Str("thread_id", res.ThreadID).
			Msg("migrated mapping to canonical key")
	}

	th, state := forum.RemoteThread{}, threadUnmapped
	if res.ThreadID != "" {
		th, state = p.resolveThread(ctx, res.ThreadID)
	}

	if task.Status.IsTerminal() {
		p.retire(ctx, res, th, state)
		return
	}
	p.converge(ctx, task, res, th, state)
}

// retire makes sure a completed task has no visible thread.
func (p *pass) retire(ctx context.Context, res forum.KeyResolution, th forum.RemoteThread, state threadState) {
	switch state {
	case threadLive:
		if p.remove(ctx, th.ID) {
			p.unlink(res.ThreadID)
		}
	case threadGone:
		p.r.log.Debug().Ctx(ctx).Str("thread_id", res.ThreadID).Msg("thread already gone, clearing mapping")
		p.unlink(res.ThreadID)
	case threadUnresolved:
		p.report.Skipped++
	}
}

// converge creates or updates the thread of a non-terminal task.
func (p *pass) converge(ctx context.Context, task forum.Task, res forum.KeyResolution, th forum.RemoteThread, state threadState) {
	controls := forum.ControlsFor(res.Key, task.Subtasks)
	if p.r.controls != nil {
		if err := p.r.controls.Register(ctx, res.Key, controls); err != nil {
			p.r.log.Warn().Ctx(ctx).Err(err).Msg("could not register thread controls")
		}
	}

	switch state {
	case threadUnresolved:
		// Creating here could duplicate a thread that still exists.
		p.report.Skipped++
	case threadUnmapped, threadGone:
		if state == threadGone {
			p.unlink(res.ThreadID)
		}
		p.create(ctx, task, res.Key, controls)
	case threadLive:
		p.update(ctx, task, th, controls)
	}
}

func (p *pass) create(ctx context.Context, task forum.Task, key string, controls []forum.Control) {
	th, err := p.r.gateway.CreateThread(ctx, p.r.parentID, ThreadName(task), ThreadContent(task), controls)
	if err != nil {
		p.r.log.Warn().Ctx(ctx).Err(err).Str("task", task.Name).Msg("could not create thread")
		p.report.Failed++
		return
	}

	p.mapping.Link(key, th.ID)
	p.dirty = true
	p.report.Created++
	p.r.log.Info().Ctx(ctx).Str("thread_id", th.ID).Str("name", th.Name).Msg("created forum thread")
}

func (p *pass) update(ctx context.Context, task forum.Task, th forum.RemoteThread, controls []forum.Control) {
	log := p.r.log

	if name := ThreadName(task); th.Name != name {
		err := p.r.gateway.RenameThread(ctx, th.ID, name)
		switch {
		case err == nil:
			p.report.Renamed++
			log.Debug().Ctx(ctx).Str("thread_id", th.ID).Str("from", th.Name).Str("to", name).Msg("renamed forum thread")
		case forum.IsPermissionDenied(err):
			log.Warn().Ctx(ctx).Err(err).Str("thread_id", th.ID).Msg("missing permission to rename forum threads, grant Manage Threads")
			p.report.Failed++
		default:
			log.Warn().Ctx(ctx).Err(err).Str("thread_id", th.ID).Msg("could not rename thread")
			p.report.Failed++
		}
	}

	p.refreshStarter(ctx, th.ID, ThreadContent(task), controls)
}

// refreshStarter edits the starter message when it drifted from the derived
// content or controls. When the starter message cannot be read or edited a
// new message carrying the current snapshot is posted instead.
func (p *pass) refreshStarter(ctx context.Context, threadID, content string, controls []forum.Control) {
	log := p.r.log

	msg, err := p.r.gateway.FetchStarterMessage(ctx, threadID)
	if err == nil {
		if !starterDrifted(msg, content, controls) {
			return
		}
		err = p.r.gateway.EditStarterMessage(ctx, threadID, content, controls)
		if err == nil {
			p.report.Edited++
			log.Debug().Ctx(ctx).Str("thread_id", threadID).Msg("refreshed starter message")
			return
		}
		if forum.IsPermissionDenied(err) {
			log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).Msg("missing permission to edit starter message")
			p.report.Failed++
			return
		}
	}

	log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).Msg("starter message unavailable, posting snapshot")
	if err := p.r.gateway.PostMessage(ctx, threadID, content, controls); err != nil {
		log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).Msg("could not post task snapshot")
		p.report.Failed++
		return
	}
	p.report.Posted++
}

func starterDrifted(msg forum.StarterMessage, content string, controls []forum.Control) bool {
	if msg.Content != content {
		return true
	}
	if len(msg.ControlIDs) == 0 && len(controls) > 0 {
		return true
	}
	return !forum.SameControlIDs(msg.ControlIDs, forum.ControlIDs(controls))
}

// remove deletes a thread, archiving and locking it when deletion is not
// permitted. It reports whether the thread is no longer visible.
func (p *pass) remove(ctx context.Context, threadID string) bool {
	log := p.r.log
	p.tried[threadID] = true

	err := p.r.gateway.DeleteThread(ctx, threadID)
	switch {
	case err == nil:
		p.report.Removed++
		log.Info().Ctx(ctx).Str("thread_id", threadID).Msg("deleted forum thread")
		return true
	case forum.IsNotFound(err):
		return true
	case !forum.IsPermissionDenied(err):
		log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).Msg("could not delete thread")
		p.report.Failed++
		return false
	}

	log.Debug().Ctx(ctx).Str("thread_id", threadID).Msg("delete not permitted, archiving thread")
	err = p.r.gateway.ArchiveAndLock(ctx, threadID)
	switch {
	case err == nil:
		p.report.Archived++
		log.Info().Ctx(ctx).Str("thread_id", threadID).Msg("archived and locked forum thread")
		return true
	case forum.IsNotFound(err):
		return true
	default:
		log.Warn().Ctx(ctx).Err(err).Str("thread_id", threadID).
			Msg("could not delete or archive thread, grant Manage Threads to the bot")
		p.report.Failed++
		return false
	}
}

func (p *pass) unlink(threadID string) {
	p.mapping.UnlinkThread(threadID)
	p.dirty = true
}

// reverseScan removes live threads whose mapped task is complete. It catches
// threads that the forward pass could not reach through the task's key.
func (p *pass) reverseScan(ctx context.Context, byKey map[string]forum.Task) {
	for _, threadID := range slices.Sorted(maps.Keys(p.index)) {
		key, ok := p.mapping.TaskFor(threadID)
		if !ok {
			continue
		}
		task, ok := byKey[key]
		if !ok || !task.Status.IsTerminal() || p.tried[threadID] {
			continue
		}

		tctx := logging.WithTaskKey(ctx, key)
		if p.remove(tctx, threadID) {
			p.unlink(threadID)
		}
	}
}

// orphanScan removes threads mapped to keys that no longer name a task.
// Threads that are gone or cannot be fetched only lose their mapping entry.
func (p *pass) orphanScan(ctx context.Context, byKey map[string]forum.Task) {
	for _, key := range slices.Sorted(maps.Keys(p.mapping.TaskToThread)) {
		if _, ok := byKey[key]; ok {
			continue
		}

		tctx := logging.WithTaskKey(ctx, key)
		threadID, ok := p.mapping.ThreadFor(key)
		if !ok {
			p.mapping.UnlinkTask(key)
			p.dirty = true
			continue
		}

		th, state := p.resolveThread(tctx, threadID)
		if state == threadLive && (p.tried[th.ID] || !p.remove(tctx, th.ID)) {
			continue
		}

		p.mapping.UnlinkTask(key)
		p.unlink(threadID)
		p.report.Orphaned++
		p.r.log.Info().Ctx(tctx).Str("thread_id", threadID).Msg("cleared orphaned thread mapping")
	}
}
