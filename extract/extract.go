package extract

import (
	"context"
	"errors"
	"io"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNoStrategy = errors.New("no strategy set")
	ErrClosed     = errors.New("strategy closed")
)

// Extractor delegates retrieval to whichever strategy is currently bound to it.
// It is not safe for concurrent use.
type Extractor struct {
	strategy Strategy
}

func New(strategy Strategy) *Extractor {
	return &Extractor{strategy: strategy}
}

func (e *Extractor) Strategy() Strategy {
	return e.strategy
}

// SetStrategy binds a new strategy and returns the previous one, which stays owned by the caller.
func (e *Extractor) SetStrategy(strategy Strategy) Strategy {
	previous := e.strategy
	e.strategy = strategy
	return previous
}

func (e *Extractor) RetrieveData(ctx context.Context) (Result, error) {
	if e.strategy == nil {
		return Result{}, ErrNoStrategy
	}

	return e.strategy.RetrieveData(ctx)
}

// Close releases the bound strategy if it holds resources.
func (e *Extractor) Close() error {
	if closer, ok := e.strategy.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
