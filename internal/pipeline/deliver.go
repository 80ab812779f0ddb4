package pipeline

import (
	"context"

	"github.com/brogergvhs/mangapdf/internal/chapters"
	"github.com/brogergvhs/mangapdf/internal/document"
	"github.com/brogergvhs/mangapdf/internal/ui"
	"github.com/brogergvhs/mangapdf/internal/util"
)

// Delivery is what the pipeline hands over for one finished chapter.
type Delivery struct {
	Job      chapters.Job
	Document document.Document
	// Folder holds the chapter's downloaded page files.
	Folder string
}

// Deliverer receives finished chapters. An error marks the chapter failed.
type Deliverer interface {
	Deliver(ctx context.Context, d Delivery) error
}

// LocalDelivery leaves documents where they were written and retires the
// page folder unless KeepFolders is set.
type LocalDelivery struct {
	KeepFolders bool
	Log         *ui.Logger
}

func (l LocalDelivery) Deliver(_ context.Context, d Delivery) error {
	if !l.KeepFolders {
		util.CleanupFolder(d.Folder)
	}

	if l.Log != nil {
		l.Log.Debugf("chapter %d/%d delivered as %s (%d pages)", d.Job.Index, d.Job.Total, d.Document.Path, d.Document.Pages)
	}

	return nil
}
