package workflow

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarbaker/LinkedOut-AiPostBot/generator"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestQueue() *Queue {
	q := NewQueue()
	q.now = func() time.Time { return t0 }
	return q
}

func post(id string, pt generator.PostType, score float64, source string) generator.GeneratedPost {
	return generator.GeneratedPost{
		ID:                  id,
		Content:             "content " + id,
		Hashtags:            []string{"#a", "#b", "#c"},
		EstimatedEngagement: score,
		Source:              source,
		PostType:            pt,
		Status:              generator.StatusApproved,
	}
}

func TestQueue_AddAndPending(t *testing.T) {
	q := newTestQueue()
	q.Add(post("1", generator.QuickUpdate, 5, "Blog"))
	q.Add(post("2", generator.StoryFormat, 7, "Blog"))

	pending := q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "1", pending[0].ID)
	assert.Equal(t, "2", pending[1].ID)
	assert.Equal(t, generator.StatusPending, pending[0].Status, "queued posts are always pending")
	assert.Equal(t, t0, pending[0].QueuedAt)

	pending[0].Hashtags[0] = "#mutated"
	got, err := q.Get("1")
	require.NoError(t, err)
	assert.Equal(t, "#a", got.Hashtags[0])
}

func TestQueue_ApproveWithEdits(t *testing.T) {
	q := newTestQueue()
	q.Add(post("1", generator.QuestionStarter, 8, "Blog"))

	edited := "edited content"
	item, err := q.Approve("1", Edits{Content: &edited, Hashtags: []string{"#x"}})
	require.NoError(t, err)

	assert.Equal(t, generator.StatusApproved, item.Status)
	assert.Equal(t, "edited content", item.Content)
	assert.Equal(t, []string{"#x"}, item.Hashtags)
	require.NotNil(t, item.DecidedAt)
	assert.Equal(t, t0, *item.DecidedAt)
	assert.Empty(t, q.Pending())
}

func TestQueue_ApproveWithoutEditsKeepsContent(t *testing.T) {
	q := newTestQueue()
	q.Add(post("1", generator.QuickUpdate, 5, "Blog"))

	item, err := q.Approve("1", Edits{})
	require.NoError(t, err)
	assert.Equal(t, "content 1", item.Content)
	assert.Equal(t, []string{"#a", "#b", "#c"}, item.Hashtags)
}

func TestQueue_DecisionErrors(t *testing.T) {
	q := newTestQueue()
	q.Add(post("1", generator.QuickUpdate, 5, "Blog"))

	_, err := q.Approve("missing", Edits{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = q.Reject("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = q.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = q.Reject("1")
	require.NoError(t, err)
	_, err = q.Approve("1", Edits{})
	assert.ErrorIs(t, err, ErrNotPending)
	_, err = q.Reject("1")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestQueue_Schedule(t *testing.T) {
	q := newTestQueue()
	q.Add(post("1", generator.QuickUpdate, 5, "Blog"))

	_, err := q.Schedule("1", t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = q.Approve("1", Edits{})
	require.NoError(t, err)

	_, err = q.Schedule("1", t0)
	assert.ErrorIs(t, err, ErrPastTime)

	item, err := q.Schedule("1", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, generator.StatusScheduled, item.Status)
	require.NotNil(t, item.ScheduledFor)
	assert.Equal(t, t0.Add(time.Hour), *item.ScheduledFor)

	_, err = q.Schedule("missing", t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_Analytics(t *testing.T) {
	q := newTestQueue()

	a := q.Analytics()
	assert.Equal(t, generator.ProfessionalInsight, a.TopPerformingFormat)
	assert.Zero(t, a.PostsGenerated)

	q.Add(post("1", generator.QuickUpdate, 6.0, "Blog"))
	q.Add(post("2", generator.StoryFormat, 9.0, "Blog"))
	q.Add(post("3", generator.StoryFormat, 7.0, ""))
	q.Add(post("4", generator.QuickUpdate, 2.0, "News"))

	_, err := q.Approve("1", Edits{})
	require.NoError(t, err)
	_, err = q.Approve("2", Edits{})
	require.NoError(t, err)
	_, err = q.Approve("3", Edits{})
	require.NoError(t, err)
	_, err = q.Reject("4")
	require.NoError(t, err)

	a = q.Analytics()
	assert.Equal(t, 4, a.PostsGenerated)
	assert.Equal(t, 3, a.PostsApproved)
	assert.Equal(t, 1, a.PostsRejected)
	assert.Equal(t, 7.3, a.AverageEngagement)
	assert.Equal(t, generator.StoryFormat, a.TopPerformingFormat)
	assert.Equal(t, map[string]float64{"Blog": 7.5, "Unknown": 7.0, "News": 2.0}, a.SourcePerformance)

	a.SourcePerformance["Blog"] = 0
	assert.Equal(t, 7.5, q.Analytics().SourcePerformance["Blog"])
}

func TestQueue_ConcurrentAdds(t *testing.T) {
	q := NewQueue()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q.Add(post(string(rune('A'+i)), generator.QuickUpdate, 5, "Blog"))
		}(i)
	}
	wg.Wait()

	assert.Len(t, q.Pending(), 50)
	assert.Equal(t, 50, q.Analytics().PostsGenerated)
}
