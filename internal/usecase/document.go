package usecase

import (
	"context"
	"image"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"emojiart/internal/domain"
	"emojiart/internal/metrics"
	"emojiart/internal/scheduler"
)

var log = logging.Logger("emojiart/document")

// DefaultAutosaveDelay is the quiet period before the document is written
const DefaultAutosaveDelay = 5 * time.Second

// Intent names used in logs and metrics
const (
	IntentAddEmoji      = "add_emoji"
	IntentSetBackground = "set_background"
	IntentMoveEmoji     = "move_emoji"
	IntentScaleEmoji    = "scale_emoji"
)

// Options holds the collaborators of an EmojiArtDocument
type Options struct {
	Store   domain.DocumentStore
	Fetcher domain.ImageFetcher
	Decoder domain.ImageDecoder

	// Clock drives the autosave timer; nil means the wall clock
	Clock clock.Clock
	// AutosaveDelay defaults to DefaultAutosaveDelay
	AutosaveDelay time.Duration
	// Metrics may be nil
	Metrics *metrics.Metrics
}

type observer struct {
	id uint64
	fn func(domain.Snapshot)
}

// EmojiArtDocument implements domain.DocumentUseCase. It owns one document,
// publishes every change to its observers and sequences autosave and
// background fetching.
type EmojiArtDocument struct {
	id      string
	store   domain.DocumentStore
	fetcher domain.ImageFetcher
	decoder domain.ImageDecoder
	metrics *metrics.Metrics

	autosave *scheduler.Debouncer

	// fetchCtx outlives Close; superseded and orphaned fetches run to completion
	fetchCtx context.Context

	// mu guards everything below; fetch completions apply under it
	mu              sync.Mutex
	document        *domain.Document
	backgroundImage image.Image
	fetchStatus     domain.FetchStatus
	revision        uint64
	closed          bool

	// snapshots queued in revision order; one caller at a time drains them
	pending    []domain.Snapshot
	delivering bool

	observersMu  sync.RWMutex
	observers    []observer
	nextObserver uint64
}

var _ domain.DocumentUseCase = (*EmojiArtDocument)(nil)

// NewEmojiArtDocument restores the document from the store, falling back to
// the default document when nothing usable is stored
func NewEmojiArtDocument(ctx context.Context, opts Options) (*EmojiArtDocument, error) {
	if opts.Store == nil {
		return nil, errors.New("document store is required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("image fetcher is required")
	}
	if opts.Decoder == nil {
		return nil, errors.New("image decoder is required")
	}

	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}

	d := &EmojiArtDocument{
		id:          uuid.New().String(),
		store:       opts.Store,
		fetcher:     opts.Fetcher,
		decoder:     opts.Decoder,
		metrics:     opts.Metrics,
		fetchCtx:    context.Background(),
		fetchStatus: domain.Idle(),
	}
	d.autosave = scheduler.NewDebouncer(opts.Clock, delay, d.autosaveNow)
	d.document = d.restore(ctx)

	log.Infow("document opened", "session", d.id, "emojis", len(d.document.Emojis()), "background", d.document.Background().String())

	// a restored url background needs its image
	d.mu.Lock()
	start := d.applyBackgroundLocked(d.document.Background())
	d.mu.Unlock()
	if start != nil {
		go start()
	}
	return d, nil
}

func (d *EmojiArtDocument) restore(ctx context.Context) *domain.Document {
	data, err := d.store.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Errorw("failed to load autosaved document, starting fresh", "session", d.id, "error", err)
		}
		return domain.DefaultDocument()
	}

	doc, err := domain.UnmarshalDocument(data)
	if err != nil {
		log.Errorw("autosaved document is malformed, starting fresh", "session", d.id, "error", err)
		return domain.DefaultDocument()
	}
	return doc
}

// ID returns the session id used in logs
func (d *EmojiArtDocument) ID() string {
	return d.id
}

// AddEmoji places a new emoji; the size is rounded to whole points
func (d *EmojiArtDocument) AddEmoji(text string, at domain.Location, size float64) domain.Emoji {
	var added domain.Emoji
	d.mutate(IntentAddEmoji, func(doc *domain.Document) bool {
		added = doc.AddEmoji(text, at, domain.Round(size))
		return true
	})
	return added
}

// SetBackground replaces the background
func (d *EmojiArtDocument) SetBackground(background domain.Background) {
	d.mutate(IntentSetBackground, func(doc *domain.Document) bool {
		doc.SetBackground(background)
		return true
	})
}

// MoveEmoji moves the emoji by the offset rounded per axis
func (d *EmojiArtDocument) MoveEmoji(emoji domain.Emoji, by domain.Offset) {
	if !by.IsFinite() {
		log.Warnw("move offset is not finite", "session", d.id, "emoji", emoji.ID)
		return
	}
	dx, dy := by.Rounded()
	d.mutate(IntentMoveEmoji, func(doc *domain.Document) bool {
		return doc.MoveEmoji(emoji.ID, dx, dy)
	})
}

// ScaleEmoji sets the size to the current size times factor, rounded
func (d *EmojiArtDocument) ScaleEmoji(emoji domain.Emoji, by float64) {
	if math.IsNaN(by) || math.IsInf(by, 0) {
		log.Warnw("scale factor is not finite", "session", d.id, "emoji", emoji.ID, "factor", by)
		return
	}
	d.mutate(IntentScaleEmoji, func(doc *domain.Document) bool {
		current, ok := doc.Emoji(emoji.ID)
		if !ok {
			return false
		}
		return doc.ResizeEmoji(emoji.ID, domain.Round(float64(current.Size)*by))
	})
}

// mutate applies fn to the document and runs the post-mutation effects. fn
// reports whether it touched the document; untouched documents publish nothing.
func (d *EmojiArtDocument) mutate(intent string, fn func(doc *domain.Document) bool) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Warnw("intent ignored on closed document", "session", d.id, "intent", intent)
		return
	}

	previous := d.document.Background()
	if !fn(d.document) {
		d.mu.Unlock()
		log.Debugw("intent matched no emoji", "session", d.id, "intent", intent)
		return
	}

	d.autosave.Trigger()

	var start func()
	if current := d.document.Background(); !current.Equal(previous) {
		start = d.applyBackgroundLocked(current)
	}

	d.queueSnapshotLocked()
	d.mu.Unlock()

	d.metrics.Intent(intent)
	d.deliver()

	if start != nil {
		go start()
	}
}

// applyBackgroundLocked updates the image and fetch status for a new
// background. For url backgrounds it returns the fetch to run off the lock.
func (d *EmojiArtDocument) applyBackgroundLocked(background domain.Background) func() {
	d.backgroundImage = nil

	switch background.Kind() {
	case domain.BackgroundURL:
		rawURL, _ := background.URL()
		d.fetchStatus = domain.Fetching()
		requestID := uuid.New().String()
		log.Debugw("fetching background", "session", d.id, "request", requestID, "url", rawURL)
		return func() {
			d.fetchBackground(rawURL, requestID)
		}

	case domain.BackgroundImageData:
		data, _ := background.ImageData()
		img, err := d.decoder.Decode(data)
		if err != nil {
			log.Warnw("embedded background is not an image", "session", d.id, "error", err)
		}
		d.backgroundImage = img
		d.fetchStatus = domain.Idle()

	default:
		d.fetchStatus = domain.Idle()
	}
	return nil
}

// fetchBackground runs on its own goroutine and applies its result only if
// the background is still the same url when it completes
func (d *EmojiArtDocument) fetchBackground(rawURL, requestID string) {
	data, err := d.fetcher.Fetch(d.fetchCtx, rawURL)
	var img image.Image
	if err == nil {
		img, err = d.decoder.Decode(data)
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if !d.document.Background().Equal(domain.URLBackground(rawURL)) {
		d.mu.Unlock()
		d.metrics.Fetch(metrics.ResultStale)
		log.Debugw("discarding stale background", "session", d.id, "request", requestID, "url", rawURL)
		return
	}

	if err != nil {
		d.backgroundImage = nil
		d.fetchStatus = domain.Failed(rawURL)
	} else {
		d.backgroundImage = img
		d.fetchStatus = domain.Idle()
	}
	d.queueSnapshotLocked()
	d.mu.Unlock()

	if err != nil {
		d.metrics.Fetch(metrics.ResultFailure)
		log.Warnw("background fetch failed", "session", d.id, "request", requestID, "url", rawURL, "error", err)
	} else {
		d.metrics.Fetch(metrics.ResultSuccess)
		log.Debugw("background ready", "session", d.id, "request", requestID, "url", rawURL)
	}
	d.deliver()
}

// Save writes the current document immediately
func (d *EmojiArtDocument) Save(ctx context.Context) error {
	d.mu.Lock()
	data, err := d.document.Encode()
	d.mu.Unlock()
	if err != nil {
		return err
	}

	if err := d.store.Save(ctx, data); err != nil {
		if errors.Is(err, domain.ErrWrite) {
			return err
		}
		return errors.Wrap(domain.ErrWrite, err.Error())
	}
	return nil
}

func (d *EmojiArtDocument) autosaveNow() {
	if err := d.Save(context.Background()); err != nil {
		d.metrics.Autosave(metrics.ResultFailure)
		log.Errorw("autosave failed", "session", d.id, "error", err)
		return
	}
	d.metrics.Autosave(metrics.ResultSuccess)
	log.Debugw("autosaved", "session", d.id)
}

// Close cancels the pending autosave. Fetches still in flight complete
// without effect.
func (d *EmojiArtDocument) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.autosave.Stop()
	log.Infow("document closed", "session", d.id)
	return nil
}

// Snapshot returns a consistent copy of the current state
func (d *EmojiArtDocument) Snapshot() domain.Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *EmojiArtDocument) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Revision:        d.revision,
		Document:        d.document.Clone(),
		BackgroundImage: d.backgroundImage,
		FetchStatus:     d.fetchStatus,
	}
}

// Emojis returns the emoji in z-order
func (d *EmojiArtDocument) Emojis() []domain.Emoji {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.document.Emojis()
}

// Background returns the current background
func (d *EmojiArtDocument) Background() domain.Background {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.document.Background()
}

// BackgroundImage returns the decoded background, nil when there is none
func (d *EmojiArtDocument) BackgroundImage() image.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backgroundImage
}

// FetchStatus returns the background retrieval status
func (d *EmojiArtDocument) FetchStatus() domain.FetchStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetchStatus
}

// Subscribe registers an observer called with a snapshot after every change,
// one snapshot at a time and in revision order. Observers run outside the
// document lock and may call intents.
func (d *EmojiArtDocument) Subscribe(fn func(domain.Snapshot)) func() {
	d.observersMu.Lock()
	d.nextObserver++
	id := d.nextObserver
	d.observers = append(d.observers, observer{id: id, fn: fn})
	d.observersMu.Unlock()

	return func() {
		d.observersMu.Lock()
		defer d.observersMu.Unlock()
		for i, o := range d.observers {
			if o.id == id {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				return
			}
		}
	}
}

func (d *EmojiArtDocument) queueSnapshotLocked() {
	d.revision++
	d.pending = append(d.pending, d.snapshotLocked())
}

// deliver drains queued snapshots to the observers in revision order. When
// another call is already delivering, including an observer calling an intent,
// that call picks up the new snapshots before it returns.
func (d *EmojiArtDocument) deliver() {
	d.mu.Lock()
	if d.delivering {
		d.mu.Unlock()
		return
	}
	d.delivering = true
	defer func() {
		d.delivering = false
		d.mu.Unlock()
	}()

	for len(d.pending) > 0 {
		snapshot := d.pending[0]
		d.pending[0] = domain.Snapshot{}
		d.pending = d.pending[1:]

		d.mu.Unlock()
		func() {
			defer d.mu.Lock()
			d.publish(snapshot)
		}()
	}
}

func (d *EmojiArtDocument) publish(snapshot domain.Snapshot) {
	d.observersMu.RLock()
	observers := make([]observer, len(d.observers))
	copy(observers, d.observers)
	d.observersMu.RUnlock()

	for _, o := range observers {
		o.fn(snapshot)
	}
}
