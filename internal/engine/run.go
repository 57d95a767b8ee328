package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// batchSize is the identifier cap for one videos.list / channels.list call.
const batchSize = 50

// RunMode selects which query sources the fan-out uses.
type RunMode string

const (
	ModeChannels RunMode = "channels"
	ModeKeywords RunMode = "keywords"
	ModeBoth     RunMode = "both"
)

// RunPhase is the orchestrator state, observable while a run is in flight.
type RunPhase string

const (
	PhaseIdle      RunPhase = "idle"
	PhaseResolving RunPhase = "resolving_channels"
	PhaseFanOut    RunPhase = "search_fan_out"
	PhaseDetails   RunPhase = "detail_batch"
	PhaseChannels  RunPhase = "channel_batch"
	PhaseFilter    RunPhase = "metrics_and_filter"
	PhaseDone      RunPhase = "done"
	PhaseFailed    RunPhase = "failed"
)

var (
	// ErrRunInProgress rejects re-entrant runs; the pipeline is strictly
	// one run at a time.
	ErrRunInProgress = errors.New("a collection run is already in progress")
	// ErrNoCredential fails a run before any network call.
	ErrNoCredential = errors.New("no API credential configured")
	// ErrNoInputs fails a run whose mode leaves both source lists empty.
	ErrNoInputs = errors.New("no channels or keywords for the selected run mode")
)

// RunParams configures one collection run.
type RunParams struct {
	Key      string
	Mode     RunMode
	Channels []string // @handles or channel IDs
	Keywords []string // effective keyword list (post-translation when enabled)
	Regions  []string
	Language string

	DaysBack      int
	PerChannelMax int
	PerKeywordMax int
	WaitMinutes   float64
	MaxRetries    int

	Filters Filters
}

// RunReport summarizes a completed run.
type RunReport struct {
	Collected int           `json:"collected"`
	Detailed  int           `json:"detailed"`
	Kept      int           `json:"kept"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Runner drives the collection pipeline and owns the published result set.
// The previous result set survives any failed run; publication is all-or-nothing.
type Runner struct {
	gw      *Gateway
	limiter *rate.Limiter
	running atomic.Bool

	mu    sync.RWMutex
	rows  []ResultRow
	phase RunPhase
}

func NewRunner(gw *Gateway) *Runner {
	return &Runner{
		gw:      gw,
		limiter: rate.NewLimiter(rate.Every(cfg.FanOutDelay), 1),
		phase:   PhaseIdle,
	}
}

// Results returns a copy of the published rows in default ranked order.
func (r *Runner) Results() []ResultRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResultRow, len(r.rows))
	copy(out, r.rows)
	return out
}

// Phase returns the current orchestrator state.
func (r *Runner) Phase() RunPhase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// Running reports whether a run is in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

func (r *Runner) setPhase(p RunPhase) {
	r.mu.Lock()
	r.phase = p
	r.mu.Unlock()
}

// Run executes one full collection: resolve channels, fan out search across
// (source × region), dedup, batch detail and subscriber lookups, derive
// metrics, filter, rank, publish. Any gateway-fatal error aborts the run and
// leaves the previously published rows untouched.
func (r *Runner) Run(ctx context.Context, p RunParams) (RunReport, error) {
	if !r.running.CompareAndSwap(false, true) {
		return RunReport{}, ErrRunInProgress
	}
	defer r.running.Store(false)

	if p.Key == "" {
		return RunReport{}, ErrNoCredential
	}
	channels := p.Channels
	if p.Mode == ModeKeywords {
		channels = nil
	}
	keywords := nonEmpty(p.Keywords)
	if p.Mode == ModeChannels {
		keywords = nil
	}
	if len(channels) == 0 && len(keywords) == 0 {
		return RunReport{}, ErrNoInputs
	}
	if len(p.Regions) == 0 {
		p.Regions = []string{"KR"}
	}
	if p.MaxRetries == 0 {
		p.MaxRetries = 2
	}

	start := time.Now()
	metrics.RunsStarted.Add(1)
	report, err := r.run(ctx, p, channels, keywords)
	if err != nil {
		r.setPhase(PhaseFailed)
		metrics.RunsFailed.Add(1)
		return RunReport{}, err
	}
	report.Elapsed = time.Since(start)
	r.setPhase(PhaseDone)
	metrics.RunsCompleted.Add(1)
	slog.Info("run complete",
		slog.Int("collected", report.Collected),
		slog.Int("detailed", report.Detailed),
		slog.Int("kept", report.Kept),
		slog.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (r *Runner) run(ctx context.Context, p RunParams, channels, keywords []string) (RunReport, error) {
	publishedAfter := time.Time{}
	if p.DaysBack > 0 {
		publishedAfter = time.Now().UTC().AddDate(0, 0, -p.DaysBack)
	}

	// --- Resolve channel handles ---
	r.setPhase(PhaseResolving)
	resolved := make([]string, 0, len(channels))
	for _, token := range channels {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if !strings.HasPrefix(token, "@") {
			resolved = append(resolved, token)
			continue
		}
		id, err := r.gw.ResolveChannel(ctx, token, p.Key, p.WaitMinutes, p.MaxRetries)
		if err != nil {
			return RunReport{}, err
		}
		if id == "" {
			// Unresolvable handles shrink the scope silently.
			continue
		}
		resolved = append(resolved, id)
	}

	// --- Search fan-out ---
	r.setPhase(PhaseFanOut)
	candidates := make(map[string]struct{})
	fanOut := func(spec SearchSpec) error {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		ids, err := r.gw.SearchVideos(ctx, spec)
		if err != nil {
			return err
		}
		for _, id := range ids {
			candidates[id] = struct{}{}
		}
		return nil
	}
	for _, region := range p.Regions {
		for _, ch := range resolved {
			err := fanOut(SearchSpec{
				ChannelID:      ch,
				Region:         region,
				Language:       p.Language,
				PublishedAfter: publishedAfter,
				MaxResults:     p.PerChannelMax,
				Order:          "date",
				Key:            p.Key,
				WaitMinutes:    p.WaitMinutes,
				MaxRetries:     p.MaxRetries,
			})
			if err != nil {
				return RunReport{}, err
			}
		}
		for _, kw := range keywords {
			err := fanOut(SearchSpec{
				Query:          kw,
				Region:         region,
				Language:       p.Language,
				PublishedAfter: publishedAfter,
				MaxResults:     p.PerKeywordMax,
				Order:          "viewCount",
				Key:            p.Key,
				WaitMinutes:    p.WaitMinutes,
				MaxRetries:     p.MaxRetries,
			})
			if err != nil {
				return RunReport{}, err
			}
		}
	}
	slog.Info("fan-out collected", slog.Int("candidates", len(candidates)))

	// --- Detail batch ---
	r.setPhase(PhaseDetails)
	details, err := r.fetchDetails(ctx, setToSlice(candidates), p)
	if err != nil {
		return RunReport{}, err
	}

	// --- Channel batch ---
	r.setPhase(PhaseChannels)
	channelIDs := make(map[string]struct{})
	for _, d := range details {
		if d.ChannelID != "" {
			channelIDs[d.ChannelID] = struct{}{}
		}
	}
	subs, err := r.fetchSubscribers(ctx, setToSlice(channelIDs), p)
	if err != nil {
		return RunReport{}, err
	}

	// --- Metrics + filter ---
	r.setPhase(PhaseFilter)
	now := time.Now().UTC()
	rows := make([]ResultRow, 0, len(details))
	for _, d := range details {
		m := ComputeMetrics(d, now)
		if !Accept(d, m, p.Filters) {
			continue
		}
		rows = append(rows, buildRow(d, m, subs[d.ChannelID]))
	}
	sortRows(rows)

	r.mu.Lock()
	r.rows = rows
	r.mu.Unlock()

	return RunReport{Collected: len(candidates), Detailed: len(details), Kept: len(rows)}, nil
}

// fetchDetails resolves candidate IDs to typed ItemDetail records in batches
// of at most batchSize per call. Items missing an ID or publish timestamp are
// flagged and dropped rather than propagated half-typed.
func (r *Runner) fetchDetails(ctx context.Context, ids []string, p RunParams) ([]ItemDetail, error) {
	var out []ItemDetail
	for _, batch := range batched(ids, batchSize) {
		params := url.Values{}
		params.Set("part", "snippet,contentDetails,statistics")
		params.Set("id", strings.Join(batch, ","))
		body, err := r.gw.Call(ctx, KindVideos, params, p.Key, p.WaitMinutes, p.MaxRetries)
		if err != nil {
			return nil, err
		}
		var resp videoListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode videos batch: %w", err)
		}
		for _, item := range resp.Items {
			d, err := itemDetailFromAPI(item)
			if err != nil {
				slog.Warn("skipping malformed video item", slog.String("id", item.ID), slog.Any("error", err))
				continue
			}
			out = append(out, d)
		}
	}
	return out, nil
}

// fetchSubscribers builds the channel ID → subscriber count map in batches.
func (r *Runner) fetchSubscribers(ctx context.Context, ids []string, p RunParams) (map[string]int64, error) {
	subs := make(map[string]int64, len(ids))
	for _, batch := range batched(ids, batchSize) {
		params := url.Values{}
		params.Set("part", "statistics")
		params.Set("id", strings.Join(batch, ","))
		body, err := r.gw.Call(ctx, KindChannels, params, p.Key, p.WaitMinutes, p.MaxRetries)
		if err != nil {
			return nil, err
		}
		var resp channelListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode channels batch: %w", err)
		}
		for _, item := range resp.Items {
			n, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
			subs[item.ID] = n
		}
	}
	return subs, nil
}

// itemDetailFromAPI converts one wire item into the typed record, rejecting
// items without the fields the pipeline depends on.
func itemDetailFromAPI(item videoItem) (ItemDetail, error) {
	if item.ID == "" {
		return ItemDetail{}, errors.New("missing video id")
	}
	published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return ItemDetail{}, fmt.Errorf("bad publishedAt %q: %w", item.Snippet.PublishedAt, err)
	}
	views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
	thumb := item.Snippet.Thumbnails.Medium.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.High.URL
	}
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}
	if thumb == "" {
		thumb = FallbackThumbnail(item.ID)
	}
	return ItemDetail{
		ID:           item.ID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		Tags:         item.Snippet.Tags,
		ChannelID:    item.Snippet.ChannelID,
		ChannelTitle: item.Snippet.ChannelTitle,
		PublishedAt:  published,
		RawDuration:  item.ContentDetails.Duration,
		Views:        views,
		Thumbnail:    thumb,
	}, nil
}

func buildRow(d ItemDetail, m DerivedMetrics, subscribers int64) ResultRow {
	row := ResultRow{
		Channel:      d.ChannelTitle,
		Title:        d.Title,
		Uploaded:     d.PublishedAt.UTC().Format("2006-01-02 15:04 UTC"),
		UploadedTS:   d.PublishedAt.Unix(),
		Views:        m.Views,
		ViewsPerHour: m.ViewsPerHour,
		Subscribers:  subscribers,
		Duration:     FormatDuration(m.DurationSec),
		DurationSec:  m.DurationSec,
		URL:          WatchURL(d.ID),
		VideoID:      d.ID,
		Thumbnail:    d.Thumbnail,
	}
	if subscribers > 0 {
		vs := float64(m.Views) / float64(subscribers)
		row.ViewsToSubs = &vs
	}
	return row
}

// sortRows applies the default ranking: views-per-hour descending, ties broken
// by raw views descending, stable otherwise.
func sortRows(rows []ResultRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ViewsPerHour != rows[j].ViewsPerHour {
			return rows[i].ViewsPerHour > rows[j].ViewsPerHour
		}
		return rows[i].Views > rows[j].Views
	})
}

// batched splits ids into chunks of at most n.
func batched(ids []string, n int) [][]string {
	var out [][]string
	for len(ids) > n {
		out = append(out, ids[:n])
		ids = ids[n:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out) // deterministic batch order
	return out
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
