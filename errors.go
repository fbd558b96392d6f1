package annrecall

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/annrecall/ann"
	"github.com/hupe1980/annrecall/ann/hnsw"
	"github.com/hupe1980/annrecall/dataset"
	"github.com/hupe1980/annrecall/distance"
	"github.com/hupe1980/annrecall/recall"
)

var (
	// ErrData matches every *DataError.
	ErrData = errors.New("data error")
	// ErrConfig matches every *ConfigError.
	ErrConfig = errors.New("config error")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage error")
)

// DataError reports a dimension mismatch or a non-finite distance met during a trial.
// The seed and query identifier reproduce the trial.
//
// The original underlying error can be accessed via errors.Unwrap.
type DataError struct {
	Trial   int
	Seed    uint64
	QueryID uint32
	cause   error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("trial %d (seed %d, query %d): data error: %v", e.Trial, e.Seed, e.QueryID, e.cause)
}

func (e *DataError) Unwrap() error { return e.cause }

// Is reports whether target is ErrData.
func (e *DataError) Is(target error) bool { return target == ErrData }

// ConfigError reports an invalid configuration value. It is raised before any trial runs.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field string
	cause error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.cause)
}

func (e *ConfigError) Unwrap() error { return e.cause }

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// StorageError reports a failure of the dataset or index collaborator.
//
// The original underlying error can be accessed via errors.Unwrap.
type StorageError struct {
	Op    string
	Trial int
	cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("trial %d: %s: storage error: %v", e.Trial, e.Op, e.cause)
}

func (e *StorageError) Unwrap() error { return e.cause }

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// trialInfo identifies the trial an error came from.
type trialInfo struct {
	trial   int
	seed    uint64
	queryID uint32
}

// translateError maps errors from leaf packages onto the three error kinds.
func translateError(t trialInfo, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	if isDataError(err) {
		return &DataError{Trial: t.trial, Seed: t.seed, QueryID: t.queryID, cause: err}
	}

	var le *recall.ErrInvalidLevel
	if errors.As(err, &le) {
		return &ConfigError{Field: "recall_levels", cause: err}
	}

	var qe *ann.QueryError
	if errors.As(err, &qe) {
		return &StorageError{Op: "query", Trial: t.trial, cause: err}
	}

	return &StorageError{Op: op, Trial: t.trial, cause: err}
}

func isDataError(err error) bool {
	var dm *distance.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return true
	}
	var nf *distance.ErrNonFinite
	if errors.As(err, &nf) {
		return true
	}
	var ddm *dataset.ErrDimensionMismatch
	if errors.As(err, &ddm) {
		return true
	}
	var hdm *hnsw.ErrDimensionMismatch
	return errors.As(err, &hdm)
}
