package bundle

// ProgressEvent represents a progress update during decode, override, or
// write operations.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Name is the entry currently being processed, if applicable.
	Name string

	// EntriesDone is the number of entries completed in the current stage.
	EntriesDone int

	// EntriesTotal is the total number of entries.
	// Zero indicates the total is not yet known.
	EntriesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for decode, override, and write operations.
const (
	// StageParsing indicates directory records are being decoded.
	StageParsing ProgressStage = iota

	// StageLoading indicates payload bytes are being read.
	StageLoading

	// StageOverriding indicates override content is being applied.
	StageOverriding

	// StageWriting indicates the output archive is being emitted.
	StageWriting
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageParsing:
		return "parsing"
	case StageLoading:
		return "loading"
	case StageOverriding:
		return "overriding"
	case StageWriting:
		return "writing"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates during operations.
type ProgressFunc func(ProgressEvent)

// emitProgress reports one event to the configured callback, if any.
func (a *Archive) emitProgress(stage ProgressStage, name string, done, total int) {
	if a.progress == nil {
		return
	}
	a.progress(ProgressEvent{
		Stage:        stage,
		Name:         name,
		EntriesDone:  done,
		EntriesTotal: total,
	})
}
