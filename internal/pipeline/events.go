package pipeline

import "fmt"

type EventKind int

const (
	ChaptersFound EventKind = iota + 1
	ChapterSkipped
	Progress
	ChapterDelivered
	ChapterFailed
	SeriesComplete
	UnsupportedSite
	NoChaptersFound
)

func (k EventKind) String() string {
	switch k {
	case ChaptersFound:
		return "ChaptersFound"
	case ChapterSkipped:
		return "ChapterSkipped"
	case Progress:
		return "Progress"
	case ChapterDelivered:
		return "ChapterDelivered"
	case ChapterFailed:
		return "ChapterFailed"
	case SeriesComplete:
		return "SeriesComplete"
	case UnsupportedSite:
		return "UnsupportedSite"
	case NoChaptersFound:
		return "NoChaptersFound"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Reasons carried by skip and failure events.
const (
	ReasonNoImages      = "no images"
	ReasonNoUsablePages = "no usable pages"
)

// Event is a read-only snapshot handed to the consumer. Which fields are set
// depends on Kind:
//
//	ChaptersFound     TotalChapters
//	ChapterSkipped    Chapter, TotalChapters, Reason
//	Progress          Chapter, TotalChapters, PagesDone, PagesTotal
//	ChapterDelivered  Chapter, TotalChapters, Document, PagesTotal
//	ChapterFailed     Chapter, TotalChapters, Reason
//	NoChaptersFound   Reason
//
// Series is always the URL the run was started with.
type Event struct {
	Kind          EventKind
	Series        string
	Chapter       int
	TotalChapters int
	PagesDone     int
	PagesTotal    int
	Reason        string
	Document      string
}

func (e Event) String() string {
	switch e.Kind {
	case ChaptersFound:
		return fmt.Sprintf("%s(%d)", e.Kind, e.TotalChapters)
	case ChapterSkipped, ChapterFailed:
		return fmt.Sprintf("%s(%d, %q)", e.Kind, e.Chapter, e.Reason)
	case Progress:
		return fmt.Sprintf("%s(%d, %d, %d, %d)", e.Kind, e.Chapter, e.TotalChapters, e.PagesDone, e.PagesTotal)
	case ChapterDelivered:
		return fmt.Sprintf("%s(%d, %s)", e.Kind, e.Chapter, e.Document)
	default:
		return e.Kind.String()
	}
}
