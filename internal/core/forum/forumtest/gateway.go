// Package forumtest provides in-memory implementations of the forum
// collaborators with call recording and failure injection for tests.
package forumtest

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/colonyops/forumsync/internal/core/forum"
)

// Operation names recorded by Gateway.
const (
	OpListCached   = "list_cached"
	OpListActive   = "list_active"
	OpFetchThread  = "fetch_thread"
	OpCreate       = "create"
	OpRename       = "rename"
	OpDelete       = "delete"
	OpArchive      = "archive_and_lock"
	OpFetchStarter = "fetch_starter"
	OpEditStarter  = "edit_starter"
	OpPost         = "post"
)

var mutatingOps = []string{OpCreate, OpRename, OpDelete, OpArchive, OpEditStarter, OpPost}

// Call is one recorded gateway invocation.
type Call struct {
	Op       string
	ThreadID string
	Name     string
	Content  string
}

// Thread is the state the fake keeps per thread.
type Thread struct {
	forum.RemoteThread
	Starter  *forum.StarterMessage
	Messages []forum.StarterMessage
	// Evicted threads are absent from the cached listing.
	Evicted bool
	// Inactive threads are absent from the active listing.
	Inactive bool
}

// Gateway is an in-memory forum.ThreadGateway. Threads are only reachable
// through listings when they are neither evicted nor inactive; FetchThread
// always sees them.
type Gateway struct {
	mu      sync.Mutex
	nextID  int
	threads map[string]*Thread
	calls   []Call
	errs    map[string]error
	idErrs  map[string]map[string]error

	// ParentErr is returned by CheckParent.
	ParentErr error
}

var (
	_ forum.ThreadGateway = (*Gateway)(nil)
	_ forum.ParentChecker = (*Gateway)(nil)
)

// NewGateway returns an empty fake forum.
func NewGateway() *Gateway {
	return &Gateway{
		nextID:  1000,
		threads: map[string]*Thread{},
		errs:    map[string]error{},
		idErrs:  map[string]map[string]error{},
	}
}

// AddThread seeds a thread with a starter message.
func (g *Gateway) AddThread(th forum.RemoteThread, starter *forum.StarterMessage) *Thread {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := &Thread{RemoteThread: th, Starter: starter}
	g.threads[th.ID] = t
	return t
}

// Thread returns the stored thread, or nil.
func (g *Gateway) Thread(id string) *Thread {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.threads[id]
}

// Threads returns all stored threads sorted by id.
func (g *Gateway) Threads() []*Thread {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Thread, 0, len(g.threads))
	for _, t := range g.threads {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Thread) int {
		ai, _ := strconv.Atoi(a.ID)
		bi, _ := strconv.Atoi(b.ID)
		return ai - bi
	})
	return out
}

// FailOp makes every call of op return err. A nil err clears the failure.
func (g *Gateway) FailOp(op string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.errs, op)
		return
	}
	g.errs[op] = err
}

// FailOpFor makes op return err for a single thread id.
func (g *Gateway) FailOpFor(op, threadID string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idErrs[op] == nil {
		g.idErrs[op] = map[string]error{}
	}
	g.idErrs[op][threadID] = err
}

// Calls returns a copy of the recorded calls.
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.calls)
}

// CallsFor returns recorded calls of the given operation.
func (g *Gateway) CallsFor(op string) []Call {
	var out []Call
	for _, c := range g.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Mutations returns recorded calls that change remote state.
func (g *Gateway) Mutations() []Call {
	var out []Call
	for _, c := range g.Calls() {
		if slices.Contains(mutatingOps, c.Op) {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (g *Gateway) ResetCalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

// record logs a call and returns the injected error for it, if any.
// Callers must hold g.mu.
func (g *Gateway) record(c Call) error {
	g.calls = append(g.calls, c)
	if err, ok := g.idErrs[c.Op][c.ThreadID]; ok && err != nil {
		return err
	}
	return g.errs[c.Op]
}

func (g *Gateway) CheckParent(_ context.Context, _ string) error {
	return g.ParentErr
}

func (g *Gateway) ListCachedThreads(_ context.Context, parentID string) ([]forum.RemoteThread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpListCached}); err != nil {
		return nil, err
	}
	var out []forum.RemoteThread
	for _, t := range g.threads {
		if !t.Evicted && !t.Archived && t.ParentID == parentID {
			out = append(out, t.RemoteThread)
		}
	}
	return out, nil
}

func (g *Gateway) ListActiveThreads(_ context.Context, _ string) ([]forum.RemoteThread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpListActive}); err != nil {
		return nil, err
	}
	var out []forum.RemoteThread
	for _, t := range g.threads {
		if !t.Inactive && !t.Archived {
			out = append(out, t.RemoteThread)
		}
	}
	return out, nil
}

func (g *Gateway) FetchThread(_ context.Context, id string) (forum.RemoteThread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpFetchThread, ThreadID: id}); err != nil {
		return forum.RemoteThread{}, err
	}
	t, ok := g.threads[id]
	if !ok {
		return forum.RemoteThread{}, fmt.Errorf("fetch thread %s: %w", id, forum.ErrNotFound)
	}
	return t.RemoteThread, nil
}

func (g *Gateway) CreateThread(_ context.Context, parentID, name, content string, controls []forum.Control) (forum.RemoteThread, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpCreate, Name: name, Content: content}); err != nil {
		return forum.RemoteThread{}, err
	}
	g.nextID++
	th := forum.RemoteThread{ID: strconv.Itoa(g.nextID), Name: name, ParentID: parentID}
	g.threads[th.ID] = &Thread{
		RemoteThread: th,
		Starter:      &forum.StarterMessage{Content: content, ControlIDs: forum.ControlIDs(controls)},
	}
	return th, nil
}

func (g *Gateway) RenameThread(_ context.Context, id, name string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpRename, ThreadID: id, Name: name}); err != nil {
		return err
	}
	t, ok := g.threads[id]
	if !ok {
		return fmt.Errorf("rename thread %s: %w", id, forum.ErrNotFound)
	}
	t.Name = name
	return nil
}

func (g *Gateway) DeleteThread(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpDelete, ThreadID: id}); err != nil {
		return err
	}
	if _, ok := g.threads[id]; !ok {
		return fmt.Errorf("delete thread %s: %w", id, forum.ErrNotFound)
	}
	delete(g.threads, id)
	return nil
}

func (g *Gateway) ArchiveAndLock(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpArchive, ThreadID: id}); err != nil {
		return err
	}
	t, ok := g.threads[id]
	if !ok {
		return fmt.Errorf("archive thread %s: %w", id, forum.ErrNotFound)
	}
	t.Archived = true
	t.Locked = true
	return nil
}

func (g *Gateway) FetchStarterMessage(_ context.Context, threadID string) (forum.StarterMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpFetchStarter, ThreadID: threadID}); err != nil {
		return forum.StarterMessage{}, err
	}
	t, ok := g.threads[threadID]
	if !ok || t.Starter == nil {
		return forum.StarterMessage{}, fmt.Errorf("starter message of %s: %w", threadID, forum.ErrNotFound)
	}
	return forum.StarterMessage{
		Content:    t.Starter.Content,
		ControlIDs: slices.Clone(t.Starter.ControlIDs),
	}, nil
}

func (g *Gateway) EditStarterMessage(_ context.Context, threadID, content string, controls []forum.Control) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpEditStarter, ThreadID: threadID, Content: content}); err != nil {
		return err
	}
	t, ok := g.threads[threadID]
	if !ok || t.Starter == nil {
		return fmt.Errorf("edit starter message of %s: %w", threadID, forum.ErrNotFound)
	}
	t.Starter = &forum.StarterMessage{Content: content, ControlIDs: forum.ControlIDs(controls)}
	return nil
}

func (g *Gateway) PostMessage(_ context.Context, threadID, content string, controls []forum.Control) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record(Call{Op: OpPost, ThreadID: threadID, Content: content}); err != nil {
		return err
	}
	t, ok := g.threads[threadID]
	if !ok {
		return fmt.Errorf("post to %s: %w", threadID, forum.ErrNotFound)
	}
	t.Messages = append(t.Messages, forum.StarterMessage{Content: content, ControlIDs: forum.ControlIDs(controls)})
	return nil
}
