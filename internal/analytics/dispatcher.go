// SPDX-License-Identifier: Apache-2.0

package analytics

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Observer is notified of every classification and extraction failure.
type Observer interface {
	Classified(convention string, tag Tag)
	ExtractionFailed(convention string, tag Tag)
}

type nopObserver struct{}

func (nopObserver) Classified(string, Tag)       {}
func (nopObserver) ExtractionFailed(string, Tag) {}

// Dispatcher classifies documents under one convention and routes them to the
// registered extractor for the detected tag. It is immutable once built and
// safe for concurrent use.
type Dispatcher struct {
	convention Convention
	extractors map[Tag]Extractor
	logger     *zap.Logger
	observer   Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithExtractors registers extractors. A later extractor for the same tag
// replaces an earlier one.
func WithExtractors(extractors ...Extractor) Option {
	return func(d *Dispatcher) {
		for _, e := range extractors {
			d.extractors[e.Tag()] = e
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithObserver sets the hook notified of each classification and failure.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		if o != nil {
			d.observer = o
		}
	}
}

// NewDispatcher creates a Dispatcher for the given convention.
func NewDispatcher(convention Convention, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		convention: convention,
		extractors: make(map[Tag]Extractor),
		logger:     zap.NewNop(),
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("convention", convention.Name))
	return d
}

// Convention returns the rule table the dispatcher classifies with.
func (d *Dispatcher) Convention() Convention { return d.convention }

// Classify returns the tag of doc under the dispatcher's convention.
func (d *Dispatcher) Classify(doc any) Tag {
	return d.convention.Classify(doc)
}

// Dispatch classifies doc and extracts its view model.
//
// A nil document yields an empty Result and no error. An unclassifiable
// document is returned unchanged with PassThrough set. A document that matched
// a schema but could not be reshaped yields an *ExtractionError.
func (d *Dispatcher) Dispatch(doc any) (Result, error) {
	res := Result{Tag: TagUnknown, Convention: d.convention.Name}
	if doc == nil {
		return res, nil
	}

	tag := d.convention.Classify(doc)
	res.Tag = tag
	d.observer.Classified(d.convention.Name, tag)

	if tag == TagUnknown {
		d.logger.Debug("no schema matched, passing document through", zap.String("kind", KindOf(doc)))
		res.View = doc
		res.PassThrough = true
		return res, nil
	}

	ex, ok := d.extractors[tag]
	if !ok {
		d.observer.ExtractionFailed(d.convention.Name, tag)
		return res, &ExtractionError{Tag: tag, Err: ErrNoExtractor}
	}
	res.Extractor = ex.Name()

	obj, _ := AsObject(doc)
	view, err := d.run(ex, obj)
	if err != nil {
		d.observer.ExtractionFailed(d.convention.Name, tag)
		d.logger.Warn("extraction failed", zap.Stringer("tag", tag), zap.String("extractor", ex.Name()), zap.Error(err))
		return res, err
	}
	res.View = view
	return res, nil
}

// Extract runs the extractor for tag directly. It returns (nil, nil) when doc
// is nil or does not satisfy the convention's rule for tag.
func (d *Dispatcher) Extract(tag Tag, doc any) (any, error) {
	if doc == nil {
		return nil, nil
	}
	rule, ok := d.convention.Rule(tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q in convention %q", ErrUnknownTag, tag, d.convention.Name)
	}
	obj, ok := AsObject(doc)
	if !ok || !rule.Matches(obj) {
		return nil, nil
	}
	ex, ok := d.extractors[tag]
	if !ok {
		return nil, &ExtractionError{Tag: tag, Err: ErrNoExtractor}
	}
	return d.run(ex, obj)
}

// RegisteredExtractors returns the extractor names in rule order.
func (d *Dispatcher) RegisteredExtractors() []string {
	names := make([]string, 0, len(d.extractors))
	for _, r := range d.convention.Rules {
		if ex, ok := d.extractors[r.Tag]; ok {
			names = append(names, ex.Name())
		}
	}
	return names
}

func (d *Dispatcher) run(ex Extractor, doc Object) (view any, err error) {
	defer func() {
		if r := recover(); r != nil {
			view = nil
			err = &ExtractionError{Tag: ex.Tag(), Err: fmt.Errorf("%w: %v", ErrExtractorPanic, r)}
		}
	}()

	view, err = ex.Extract(doc)
	if err != nil {
		var ee *ExtractionError
		if !errors.As(err, &ee) {
			err = &ExtractionError{Tag: ex.Tag(), Err: err}
		}
		return nil, err
	}
	return view, nil
}
