package views

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/gascontrol/internal/api"
	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// Option customises a view.
type Option func(*options)

type options struct {
	gate   Gate
	logger *logrus.Logger
	toasts *Toasts
	now    func() time.Time
	index  *GasometerIndex
}

func WithGate(g Gate) Option { return func(o *options) { o.gate = g } }

func WithLogger(l *logrus.Logger) Option { return func(o *options) { o.logger = l } }

// WithToasts shares one toast slot between views.
func WithToasts(t *Toasts) Option { return func(o *options) { o.toasts = t } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithIndex feeds fetched gasometers into idx.
func WithIndex(idx *GasometerIndex) Option { return func(o *options) { o.index = idx } }

func buildOptions(opts []Option) options {
	o := options{gate: openGate{}, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetOutput(io.Discard)
	}
	if o.toasts == nil {
		o.toasts = NewToasts(o.now)
	}
	return o
}

// listLabels names the resource in toasts and logs.
type listLabels struct {
	singular string // "Reading"
	plural   string // "readings"
	// fields whose server-side validation messages are shown to the user,
	// in priority order.
	fields []string
}

// PagedList is a fetched, filtered and paged view over a Repository.
//
// Every successful mutation is followed by a full re-fetch; the local copy
// is never patched. Overlapping refreshes are not sequenced: whichever
// finishes last wins. Failures leave the state untouched.
type PagedList[T any, P any] struct {
	repo     Repository[T, P]
	labels   listLabels
	validate func(P) error
	onLoad   func([]T)
	opts     options

	mu       sync.Mutex
	items    []T
	filtered []T
	preds    []query.Predicate[T]
	pager    *query.Pager
}

func newPagedList[T any, P any](repo Repository[T, P], labels listLabels, validate func(P) error, o options) *PagedList[T, P] {
	return &PagedList[T, P]{
		repo:     repo,
		labels:   labels,
		validate: validate,
		opts:     o,
		items:    []T{},
		filtered: []T{},
		pager:    query.NewPager(query.PageSize),
	}
}

// Toasts returns the view's notification slot.
func (l *PagedList[T, P]) Toasts() *Toasts {
	return l.opts.toasts
}

// Refresh re-fetches the whole collection.
func (l *PagedList[T, P]) Refresh(ctx context.Context) error {
	if err := l.opts.gate.Require(); err != nil {
		return err
	}

	items, err := l.repo.List(ctx)
	if err != nil {
		l.opts.logger.WithFields(logrus.Fields{
			"resource": l.labels.plural,
		}).WithError(err).Error("Fetch failed")
		l.opts.toasts.Error(fmt.Sprintf("Failed to fetch %s", l.labels.plural))
		return err
	}
	if items == nil {
		items = []T{}
	}

	l.mu.Lock()
	l.items = items
	l.refilterLocked()
	l.mu.Unlock()

	if l.onLoad != nil {
		l.onLoad(items)
	}
	return nil
}

func (l *PagedList[T, P]) Create(ctx context.Context, payload P) error {
	return l.mutate(ctx, "create", "created", payload, func() error {
		_, err := l.repo.Create(ctx, payload)
		return err
	})
}

func (l *PagedList[T, P]) Update(ctx context.Context, id int, payload P) error {
	return l.mutate(ctx, "edit", "edited", payload, func() error {
		_, err := l.repo.Update(ctx, id, payload)
		return err
	})
}

func (l *PagedList[T, P]) Delete(ctx context.Context, id int) error {
	if err := l.opts.gate.Require(); err != nil {
		return err
	}
	if err := l.repo.Delete(ctx, id); err != nil {
		return l.fail("delete", err)
	}
	return l.succeed(ctx, "deleted")
}

func (l *PagedList[T, P]) mutate(ctx context.Context, verb, past string, payload P, call func() error) error {
	if err := l.opts.gate.Require(); err != nil {
		return err
	}
	if l.validate != nil {
		if err := l.validate(payload); err != nil {
			return err
		}
	}
	if err := call(); err != nil {
		return l.fail(verb, err)
	}
	return l.succeed(ctx, past)
}

func (l *PagedList[T, P]) succeed(ctx context.Context, past string) error {
	err := l.Refresh(ctx)
	l.opts.toasts.Success(fmt.Sprintf("%s successfully %s", l.labels.singular, past))
	return err
}

func (l *PagedList[T, P]) fail(verb string, err error) error {
	msg := fmt.Sprintf("Failed to %s %s", verb, lower(l.labels.singular))
	if fe, ok := api.AsFetchError(err); ok {
		for _, field := range l.labels.fields {
			if detail, ok := fe.FieldMessage(field); ok {
				msg = fmt.Sprintf("%s: %s", msg, detail)
				break
			}
		}
	}

	l.opts.logger.WithFields(logrus.Fields{
		"resource": l.labels.plural,
		"action":   verb,
	}).WithError(err).Error("Mutation failed")
	l.opts.toasts.Error(msg)
	return err
}

// Apply replaces the active predicates and returns to the first page.
func (l *PagedList[T, P]) Apply(preds ...query.Predicate[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.preds = preds
	l.refilterLocked()
}

func (l *PagedList[T, P]) refilterLocked() {
	l.filtered = query.Filter(l.items, l.preds...)
	l.pager.Reset(len(l.filtered))
}

// Items returns the unfiltered collection.
func (l *PagedList[T, P]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

func (l *PagedList[T, P]) Filtered() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filtered
}

// Find returns the first fetched item matching pred.
func (l *PagedList[T, P]) Find(pred query.Predicate[T]) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, item := range l.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Page returns the items of the current page.
func (l *PagedList[T, P]) Page() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return query.Paginate(l.filtered, l.pager.Page(), l.pager.Size())
}

func (l *PagedList[T, P]) CurrentPage() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Page()
}

func (l *PagedList[T, P]) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.TotalPages()
}

func (l *PagedList[T, P]) Next() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Next()
}

func (l *PagedList[T, P]) Prev() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Prev()
}

func (l *PagedList[T, P]) Goto(page int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pager.Goto(page)
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
