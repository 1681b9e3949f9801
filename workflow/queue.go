// Package workflow keeps generated posts in an in-memory approval queue and
// tracks simple analytics over the decisions made on them.
package workflow

import (
	"errors"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
)

var (
	ErrNotFound    = errors.New("post not found")
	ErrNotPending  = errors.New("post is not pending")
	ErrNotApproved = errors.New("post is not approved")
	ErrPastTime    = errors.New("schedule time is in the past")
)

const unknownSource = "Unknown"

// Item is a queued post together with its queue timestamps.
type Item struct {
	generator.GeneratedPost
	QueuedAt     time.Time  `json:"queuedAt"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// Edits are optional reviewer changes applied on approval. Nil fields keep
// the generated value.
type Edits struct {
	Content  *string
	Hashtags []string
}

type Analytics struct {
	PostsGenerated      int                `json:"postsGenerated"`
	PostsApproved       int                `json:"postsApproved"`
	PostsRejected       int                `json:"postsRejected"`
	AverageEngagement   float64            `json:"averageEngagement"`
	TopPerformingFormat generator.PostType `json:"topPerformingFormat"`
	SourcePerformance   map[string]float64 `json:"sourcePerformance"`
}

type Queue struct {
	mu       sync.Mutex
	items    map[string]*Item
	order    []string
	analytic Analytics
	now      func() time.Time
}

func NewQueue() *Queue {
	return &Queue{
		items: make(map[string]*Item),
		analytic: Analytics{
			TopPerformingFormat: generator.ProfessionalInsight,
			SourcePerformance:   make(map[string]float64),
		},
		now: time.Now,
	}
}

// Add enqueues post as pending. A post whose ID is already queued replaces
// the earlier entry in place.
func (q *Queue) Add(post generator.GeneratedPost) Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	post.Status = generator.StatusPending
	item := &Item{GeneratedPost: post, QueuedAt: q.now()}
	if _, ok := q.items[post.ID]; !ok {
		q.order = append(q.order, post.ID)
	}
	q.items[post.ID] = item

	q.analytic.PostsGenerated++
	source := post.Source
	if source == "" {
		source = unknownSource
	}
	if cur, ok := q.analytic.SourcePerformance[source]; ok {
		q.analytic.SourcePerformance[source] = round1((cur + post.EstimatedEngagement) / 2)
	} else {
		q.analytic.SourcePerformance[source] = post.EstimatedEngagement
	}
	return *item
}

// Pending lists pending posts in the order they were queued.
func (q *Queue) Pending() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, 0, len(q.order))
	for _, id := range q.order {
		if it := q.items[id]; it.Status == generator.StatusPending {
			out = append(out, copyItem(it))
		}
	}
	return out
}

func (q *Queue) Get(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, ok := q.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	return copyItem(it), nil
}

// Approve marks a pending post approved after applying edits.
func (q *Queue) Approve(id string, edits Edits) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, err := q.pending(id)
	if err != nil {
		return Item{}, err
	}
	if edits.Content != nil {
		it.Content = *edits.Content
	}
	if edits.Hashtags != nil {
		it.Hashtags = slices.Clone(edits.Hashtags)
	}
	q.decide(it, generator.StatusApproved)
	q.analytic.PostsApproved++
	q.recomputeApproved()
	return copyItem(it), nil
}

func (q *Queue) Reject(id string) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, err := q.pending(id)
	if err != nil {
		return Item{}, err
	}
	q.decide(it, generator.StatusRejected)
	q.analytic.PostsRejected++
	return copyItem(it), nil
}

// Schedule moves an approved post to scheduled for publication at at.
func (q *Queue) Schedule(id string, at time.Time) (Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	it, ok := q.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}
	if it.Status != generator.StatusApproved {
		return Item{}, ErrNotApproved
	}
	if !at.After(q.now()) {
		return Item{}, ErrPastTime
	}
	it.Status = generator.StatusScheduled
	it.ScheduledFor = &at
	return copyItem(it), nil
}

func (q *Queue) Analytics() Analytics {
	q.mu.Lock()
	defer q.mu.Unlock()

	a := q.analytic
	a.SourcePerformance = maps.Clone(q.analytic.SourcePerformance)
	return a
}

func (q *Queue) pending(id string) (*Item, error) {
	it, ok := q.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if it.Status != generator.StatusPending {
		return nil, ErrNotPending
	}
	return it, nil
}

func (q *Queue) decide(it *Item, status generator.Status) {
	now := q.now()
	it.Status = status
	it.DecidedAt = &now
}

// recomputeApproved refreshes the average engagement and the best format
// over all approved posts. Ties keep the format seen first.
func (q *Queue) recomputeApproved() {
	var total float64
	var n int
	sums := make(map[generator.PostType]float64)
	counts := make(map[generator.PostType]int)
	var formats []generator.PostType

	for _, id := range q.order {
		it := q.items[id]
		if it.Status != generator.StatusApproved && it.Status != generator.StatusScheduled {
			continue
		}
		total += it.EstimatedEngagement
		n++
		pt := it.PostType
		if pt == "" {
			pt = generator.ProfessionalInsight
		}
		if counts[pt] == 0 {
			formats = append(formats, pt)
		}
		sums[pt] += it.EstimatedEngagement
		counts[pt]++
	}
	if n == 0 {
		return
	}
	q.analytic.AverageEngagement = round1(total / float64(n))

	top, best := generator.ProfessionalInsight, 0.0
	for _, pt := range formats {
		if avg := sums[pt] / float64(counts[pt]); avg > best {
			top, best = pt, avg
		}
	}
	q.analytic.TopPerformingFormat = top
}

func copyItem(it *Item) Item {
	c := *it
	c.Hashtags = slices.Clone(it.Hashtags)
	if it.DecidedAt != nil {
		t := *it.DecidedAt
		c.DecidedAt = &t
	}
	if it.ScheduledFor != nil {
		t := *it.ScheduledFor
		c.ScheduledFor = &t
	}
	return c
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
