// Package orchestrator exposes the operator intents: add, delete, clear and refresh.
//
// Every mutating intent follows the same two stages: issue the remote call and wait
// for it, then on success request a (coalesced) refresh. Failures are returned to
// the caller and leave the Entry Store untouched.
package orchestrator

import (
	"context"
	"strconv"
	"strings"

	"cache-viewer/internal/cacheclient"
	"cache-viewer/internal/models"

	"github.com/rs/zerolog"
)

// Transport is the subset of the cache client the orchestrator drives.
type Transport interface {
	Get(ctx context.Context, key string) (models.CacheEntry, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Create(ctx context.Context, entry models.CacheEntry) error
}

// Refresher requests a full snapshot refresh.
type Refresher interface {
	Refresh(ctx context.Context) (models.Snapshot, error)
}

// Recorder persists intent outcomes.
type Recorder interface {
	Record(ctx context.Context, activity models.Activity) error
}

// Orchestrator implements the five intents offered to presentation layers.
type Orchestrator struct {
	transport Transport
	refresher Refresher
	recorder  Recorder
	log       zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder journals every intent outcome.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// New creates an Orchestrator.
func New(transport Transport, refresher Refresher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		transport: transport,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.log = o.log.With().Str("component", "orchestrator").Logger()
	return o
}

// AddEntry validates the form input, creates the entry remotely and refreshes.
// expiry is the raw operator input and must parse as a non-negative integer.
func (o *Orchestrator) AddEntry(ctx context.Context, key, value, expiry string) error {
	ttl, err := validateAdd(key, value, expiry)
	if err != nil {
		o.record(ctx, models.ActivityAdd, key, err)
		return err
	}

	err = o.transport.Create(ctx, models.CacheEntry{Key: key, Value: value, Expiry: ttl})
	o.record(ctx, models.ActivityAdd, key, err)
	if err != nil {
		o.log.Info().Err(err).Str("key", key).Msg("add rejected")
		return err
	}
	o.refreshAfter(ctx, "add")
	return nil
}

// DeleteEntry removes one entry. A key already gone remotely only means the local
// view was stale, so it refreshes and reports success.
func (o *Orchestrator) DeleteEntry(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		err := cacheclient.NewValidationError("delete", "Key cannot be empty")
		o.record(ctx, models.ActivityDelete, key, err)
		return err
	}

	err := o.transport.Delete(ctx, key)
	o.record(ctx, models.ActivityDelete, key, err)
	switch {
	case err == nil:
	case cacheclient.IsNotFound(err):
		o.log.Info().Str("key", key).Msg("delete of absent key; view was stale")
	default:
		o.log.Info().Err(err).Str("key", key).Msg("delete failed")
		return err
	}
	o.refreshAfter(ctx, "delete")
	return nil
}

// ClearAll removes every entry remotely and refreshes.
func (o *Orchestrator) ClearAll(ctx context.Context) error {
	err := o.transport.Clear(ctx)
	o.record(ctx, models.ActivityClear, "", err)
	if err != nil {
		o.log.Info().Err(err).Msg("clear failed")
		return err
	}
	o.refreshAfter(ctx, "clear")
	return nil
}

// ManualRefresh is the operator's explicit refresh. Its error is also visible as the
// store's error overlay.
func (o *Orchestrator) ManualRefresh(ctx context.Context) error {
	_, err := o.refresher.Refresh(ctx)
	o.record(ctx, models.ActivityRefresh, "", err)
	return err
}

// RefreshOne probes key and then refreshes everything. The fetched entry is never
// applied on its own because the remote may have evicted or expired other entries
// since the last list.
func (o *Orchestrator) RefreshOne(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		err := cacheclient.NewValidationError("get", "Key cannot be empty")
		o.record(ctx, models.ActivityRefreshOne, key, err)
		return err
	}

	_, err := o.transport.Get(ctx, key)
	if err != nil && !cacheclient.IsNotFound(err) {
		o.record(ctx, models.ActivityRefreshOne, key, err)
		return err
	}
	if _, rerr := o.refresher.Refresh(ctx); rerr != nil {
		o.record(ctx, models.ActivityRefreshOne, key, rerr)
		return rerr
	}
	o.record(ctx, models.ActivityRefreshOne, key, err)
	return nil
}

// refreshAfter runs the follow-up refresh of a successful mutation. Its failure is
// already on the store as an error overlay, so it is only logged here.
func (o *Orchestrator) refreshAfter(ctx context.Context, intent string) {
	if _, err := o.refresher.Refresh(ctx); err != nil {
		o.log.Debug().Err(err).Str("intent", intent).Msg("follow-up refresh failed")
	}
}

func (o *Orchestrator) record(ctx context.Context, kind models.ActivityKind, key string, err error) {
	if o.recorder == nil {
		return
	}
	activity := models.Activity{
		Kind:    kind,
		Key:     key,
		Outcome: Outcome(err),
	}
	if err != nil {
		activity.Message = err.Error()
	}
	if rerr := o.recorder.Record(context.WithoutCancel(ctx), activity); rerr != nil {
		o.log.Warn().Err(rerr).Str("kind", string(kind)).Msg("failed to record activity")
	}
}

// Outcome classifies err for the activity journal.
func Outcome(err error) models.ActivityOutcome {
	if err == nil {
		return models.OutcomeOK
	}
	kind, _ := cacheclient.KindOf(err)
	switch kind {
	case cacheclient.KindNotFound:
		return models.OutcomeNotFound
	case cacheclient.KindValidation:
		return models.OutcomeValidation
	default:
		return models.OutcomeTransport
	}
}

func validateAdd(key, value, expiry string) (int64, error) {
	if strings.TrimSpace(key) == "" {
		return 0, cacheclient.NewValidationError("create", "Key cannot be empty")
	}
	if strings.TrimSpace(value) == "" {
		return 0, cacheclient.NewValidationError("create", "Value cannot be empty")
	}
	ttl, err := ParseExpiry(expiry)
	if err != nil {
		return 0, err
	}
	return ttl, nil
}

// ParseExpiry parses operator input as a non-negative number of seconds.
func ParseExpiry(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, cacheclient.NewValidationError("create", "Expiry cannot be empty")
	}
	ttl, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ttl < 0 {
		return 0, cacheclient.NewValidationError("create", "Expiry must be a non-negative integer")
	}
	return ttl, nil
}
