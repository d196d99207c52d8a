package domain

import "time"

// Stage is a step of the per-image state machine.
type Stage string

const (
	StageNone        Stage = ""
	StageDecoded     Stage = "decoded"
	StageTrimmed     Stage = "trimmed"
	StageClassified  Stage = "classified"
	StageMasked      Stage = "masked"
	StageFloodFilled Stage = "flood_filled"
	StageSmoothed    Stage = "smoothed"
	StageEncoded     Stage = "encoded"
	StageFailed      Stage = "failed"
)

type ErrorKind string

const (
	ErrorKindNone            ErrorKind = ""
	ErrorKindDecode          ErrorKind = "decode_error"
	ErrorKindInvalidGeometry ErrorKind = "invalid_geometry"
	ErrorKindMetadataMissing ErrorKind = "metadata_missing"
	ErrorKindIO              ErrorKind = "io_error"
	ErrorKindEncode          ErrorKind = "encode_error"
	ErrorKindPanic           ErrorKind = "panic"
)

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Outcome is the result of one task: either Success with an output path or
// Failure with an error kind and message.
type Outcome struct {
	Task       Task          `json:"task"`
	OutputPath string        `json:"output_path,omitempty"`
	Shape      string        `json:"shape,omitempty"`
	Stage      Stage         `json:"stage"`
	Kind       ErrorKind     `json:"error_kind,omitempty"`
	Message    string        `json:"message,omitempty"`
	Skipped    bool          `json:"skipped,omitempty"`
	Bytes      int           `json:"bytes,omitempty"`
	Pixels     int64         `json:"pixels,omitempty"`
	Duration   time.Duration `json:"duration"`
}

func Success(task Task, outputPath string) Outcome {
	return Outcome{Task: task, OutputPath: outputPath, Stage: StageEncoded}
}

func Failure(task Task, stage Stage, kind ErrorKind, message string) Outcome {
	return Outcome{Task: task, Stage: stage, Kind: kind, Message: message}
}

func (o Outcome) Failed() bool {
	return o.Kind != ErrorKindNone
}

func (o Outcome) Status() string {
	switch {
	case o.Failed():
		return StatusFailed
	case o.Skipped:
		return StatusSkipped
	default:
		return StatusSucceeded
	}
}
