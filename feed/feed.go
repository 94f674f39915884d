// Package feed assembles the activities page: the athlete's recent activities
// from a date-bucketed list entry, plus one cached detail per activity.
//
// Detail failures never fail the page. Each affected item carries an Error
// placeholder instead of a Detail and the cause is logged. A failing list
// fetch fails the page and the error is returned unchanged.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/internal/keys"
	"github.com/unkn0wn-root/asidecache/strava"
)

var (
	// ErrNotSequence marks a stored list entry that decoded to null.
	ErrNotSequence = errors.New("feed: activity list is not a sequence")
	// ErrEmptyDetail marks a stored detail without an id, such as the {}
	// older writers leave behind when an upstream call failed.
	ErrEmptyDetail = errors.New("feed: activity detail is empty")
)

// Upstream is the subset of the Strava client the feed produces from.
type Upstream interface {
	ListActivities(ctx context.Context, perPage int) ([]strava.Activity, error)
	GetActivity(ctx context.Context, id int64) (strava.ActivityDetail, error)
}

type Config struct {
	PerPage           int            // activities per list fetch; 0 => 7
	TTL               time.Duration  // entry ttl for list and details; 0 => 1h
	DetailConcurrency int            // concurrent detail fetches; 0 => 1 (sequential)
	Location          *time.Location // date bucket location; nil => time.Local
	Logger            asidecache.Logger
	Now               func() time.Time // nil => time.Now
}

type Service struct {
	up      Upstream
	list    asidecache.Cache[[]strava.Activity]
	details asidecache.Cache[strava.ActivityDetail]

	perPage     int
	ttl         time.Duration
	concurrency int
	loc         *time.Location
	log         asidecache.Logger
	now         func() time.Time
}

// Item pairs one listed activity with its detail. Detail is nil and Error is
// set when the detail could not be loaded.
type Item struct {
	Activity strava.Activity        `json:"activity"`
	Detail   *strava.ActivityDetail `json:"detail,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// CalendarDay is one heatmap cell: the activity's day and its distance scaled
// to tens of kilometres.
type CalendarDay struct {
	Day      string  `json:"day"`
	Activity float64 `json:"activity"`
}

type Page struct {
	Activities  []strava.Activity               `json:"activities"`
	Items       []Item                          `json:"items"`
	Details     map[int64]strava.ActivityDetail `json:"details"`
	Calendar    []CalendarDay                   `json:"calendar"`
	GeneratedAt time.Time                       `json:"generatedAt"`
}

// ValidateList rejects a decoded list that is not a sequence. Install it as
// Options.Validate of the list cache so a stored null counts as malformed.
func ValidateList(v []strava.Activity) error {
	if v == nil {
		return ErrNotSequence
	}
	return nil
}

// ValidateDetail rejects a decoded detail with no id. Install it as
// Options.Validate of the detail cache.
func ValidateDetail(d strava.ActivityDetail) error {
	if d.ID == 0 {
		return ErrEmptyDetail
	}
	return nil
}

func New(cfg Config, up Upstream, list asidecache.Cache[[]strava.Activity], details asidecache.Cache[strava.ActivityDetail]) (*Service, error) {
	if up == nil || list == nil || details == nil {
		return nil, errors.New("feed: upstream, list cache and detail cache are required")
	}
	if cfg.PerPage < 0 || cfg.PerPage > strava.MaxPerPage {
		return nil, fmt.Errorf("feed: per page %d out of range", cfg.PerPage)
	}
	if cfg.TTL < 0 || cfg.DetailConcurrency < 0 {
		return nil, errors.New("feed: ttl and detail concurrency must not be negative")
	}

	s := &Service{
		up:          up,
		list:        list,
		details:     details,
		perPage:     cfg.PerPage,
		ttl:         cfg.TTL,
		concurrency: cfg.DetailConcurrency,
		loc:         cfg.Location,
		log:         cfg.Logger,
		now:         cfg.Now,
	}
	if s.perPage == 0 {
		s.perPage = 7
	}
	if s.ttl == 0 {
		s.ttl = time.Hour
	}
	if s.concurrency == 0 {
		s.concurrency = 1
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.log == nil {
		s.log = asidecache.NopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Load builds the page. forceRefresh bypasses the stored list only; details
// are always read through.
func (s *Service) Load(ctx context.Context, forceRefresh bool) (*Page, error) {
	now := s.now().In(s.loc)

	acts, err := s.activities(ctx, now, forceRefresh)
	if err != nil {
		return nil, err
	}

	items := s.loadDetails(ctx, now, acts)

	page := &Page{
		Activities:  acts,
		Items:       items,
		Details:     make(map[int64]strava.ActivityDetail, len(items)),
		Calendar:    Calendar(acts),
		GeneratedAt: now,
	}
	for _, it := range items {
		if it.Detail != nil {
			page.Details[it.Activity.ID] = *it.Detail
		}
	}
	return page, nil
}

// activities reads the bucketed list. A malformed stored list is replaced by
// exactly one forced refresh; whatever that returns is final.
func (s *Service) activities(ctx context.Context, now time.Time, forceRefresh bool) ([]strava.Activity, error) {
	key := keys.List(now)
	produce := func(ctx context.Context) ([]strava.Activity, error) {
		return s.up.ListActivities(ctx, s.perPage)
	}

	acts, err := s.list.FetchOrCompute(ctx, key, produce, s.ttl, forceRefresh)
	if errors.Is(err, asidecache.ErrMalformedEntry) {
		s.log.Warn("stored activity list malformed; refreshing", asidecache.Fields{"key": key, "err": err})
		acts, err = s.list.FetchOrCompute(ctx, key, produce, s.ttl, true)
	}
	if err != nil {
		// The upstream answered but the write-back failed: serve what we got.
		if writeBackFailed(err) {
			s.log.Error("activity list not cached", asidecache.Fields{"key": key, "err": err})
			return acts, nil
		}
		s.log.Error("activity list unavailable", asidecache.Fields{"key": key, "err": err})
		return nil, fmt.Errorf("feed: activities: %w", err)
	}
	return acts, nil
}

// loadDetails fetches one detail per activity with at most s.concurrency calls
// in flight. Each goroutine writes only its own slot, keyed by the activity it
// was started for, so output order follows the list.
func (s *Service) loadDetails(ctx context.Context, now time.Time, acts []strava.Activity) []Item {
	items := make([]Item, len(acts))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, act := range acts {
		items[i].Activity = act
		g.Go(func() error {
			d, err := s.detail(ctx, now, act.ID)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Detail = &d
			return nil
		})
	}
	_ = g.Wait() // per-item errors are kept on the items

	return items
}

// detail reads one bucketed detail. Like the list, a malformed stored detail
// gets one forced refresh.
func (s *Service) detail(ctx context.Context, now time.Time, id int64) (strava.ActivityDetail, error) {
	key := keys.Detail(id, now)
	produce := func(ctx context.Context) (strava.ActivityDetail, error) {
		return s.up.GetActivity(ctx, id)
	}

	d, err := s.details.FetchOrCompute(ctx, key, produce, s.ttl, false)
	if errors.Is(err, asidecache.ErrMalformedEntry) {
		s.log.Warn("stored activity detail malformed; refreshing", asidecache.Fields{"key": key, "id": id, "err": err})
		d, err = s.details.FetchOrCompute(ctx, key, produce, s.ttl, true)
	}
	if err == nil {
		return d, nil
	}
	if writeBackFailed(err) {
		s.log.Error("activity detail not cached", asidecache.Fields{"key": key, "id": id, "err": err})
		return d, nil
	}
	s.log.Error("activity detail unavailable", asidecache.Fields{"key": key, "id": id, "err": err})
	return strava.ActivityDetail{}, err
}

// writeBackFailed reports a produce that succeeded but could not be stored.
// The value returned alongside such an error is good to serve.
func writeBackFailed(err error) bool {
	return errors.Is(err, asidecache.ErrStoreUnavailable) && !errors.Is(err, asidecache.ErrProducerFailure)
}

// Calendar maps each activity to its start day (YYYY-MM-DD from start_date)
// and distance / 10000. Activities without a usable start date are skipped.
func Calendar(acts []strava.Activity) []CalendarDay {
	out := make([]CalendarDay, 0, len(acts))
	for _, a := range acts {
		if len(a.StartDate) < 10 {
			continue
		}
		out = append(out, CalendarDay{Day: a.StartDate[:10], Activity: a.Distance / 10000})
	}
	return out
}
