package project

import "context"

// Repository is the whole-row project store. Upsert replaces the entire row;
// the writer that lands last wins.
type Repository interface {
	List(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	Upsert(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Scheduler decouples edits from persistence. Schedule arms a deferred save
// for the snapshot; Pending exposes snapshots not yet written so reads see
// the current session's edits.
type Scheduler interface {
	Schedule(p Project)
	Pending(id string) (Project, bool)
	PendingAll() []Project
	Cancel(id string)
}

// Publisher receives whole-row change notifications after each edit.
type Publisher interface {
	ProjectUpserted(p Project)
	ProjectDeleted(id string)
}

type NoopPublisher struct{}

func (NoopPublisher) ProjectUpserted(Project) {}

func (NoopPublisher) ProjectDeleted(string) {}
