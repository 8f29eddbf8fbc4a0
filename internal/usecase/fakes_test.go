package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
)

type pageFunc func(videoID string, cursor int64, call int) (*entity.CommentPage, error)

// fakeFetcher scripts upstream pages and records call counts and peak concurrency.
type fakeFetcher struct {
	pages pageFunc
	delay time.Duration

	mu       sync.Mutex
	calls    map[string]int
	cursors  map[string][]int64
	inflight atomic.Int32
	peak     atomic.Int32
}

func newFakeFetcher(pages pageFunc) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: map[string]int{}, cursors: map[string][]int64{}}
}

func (f *fakeFetcher) FetchPage(ctx context.Context, videoID string, cursor int64, pageSize int) (*entity.CommentPage, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[videoID]++
	call := f.calls[videoID]
	f.cursors[videoID] = append(f.cursors[videoID], cursor)
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.pages(videoID, cursor, call)
}

func (f *fakeFetcher) callCount(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[videoID]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// rawComments builds n raw comments with ids prefixed by tag.
func rawComments(tag string, n int) []entity.RawComment {
	out := make([]entity.RawComment, n)
	for i := range out {
		out[i] = entity.RawComment{CID: fmt.Sprintf("%s-%d", tag, i), Text: "comment"}
	}
	return out
}

// endlessPages always reports more data with an advancing cursor.
func endlessPages(perPage int) pageFunc {
	return func(videoID string, cursor int64, call int) (*entity.CommentPage, error) {
		return &entity.CommentPage{
			Comments: rawComments(fmt.Sprintf("%s-p%d", videoID, call), perPage),
			Cursor:   cursor + int64(perPage),
			HasMore:  true,
		}, nil
	}
}

// finitePages serves total comments in pages of perPage, then stops.
func finitePages(total, perPage int) pageFunc {
	return func(videoID string, cursor int64, call int) (*entity.CommentPage, error) {
		remaining := total - int(cursor)
		if remaining <= 0 {
			return &entity.CommentPage{}, nil
		}
		n := min(perPage, remaining)
		next := cursor + int64(n)
		return &entity.CommentPage{
			Comments: rawComments(fmt.Sprintf("%s-p%d", videoID, call), n),
			Cursor:   next,
			HasMore:  int(next) < total,
		}, nil
	}
}

// fakeFailureRepo records journal writes in memory.
type fakeFailureRepo struct {
	name string
	err  error

	mu       sync.Mutex
	failures map[string]*entity.FetchFailure
}

func newFakeFailureRepo(name string) *fakeFailureRepo {
	return &fakeFailureRepo{name: name, failures: map[string]*entity.FetchFailure{}}
}

func (r *fakeFailureRepo) Name() string { return r.name }

func (r *fakeFailureRepo) SaveOrUpdate(ctx context.Context, failure *entity.FetchFailure) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *failure
	if prev, ok := r.failures[failure.URL]; ok {
		stored.FailureCount = prev.FailureCount + 1
	} else {
		stored.FailureCount = 1
	}
	r.failures[failure.URL] = &stored
	return nil
}

func (r *fakeFailureRepo) FindByURL(ctx context.Context, url string) (*entity.FetchFailure, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.failures[url]
	if !ok {
		return nil, repository.ErrFailureNotFound
	}
	return f, nil
}

func (r *fakeFailureRepo) Ping(ctx context.Context) error { return r.err }
