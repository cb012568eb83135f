package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/research-assistant/internal/library"
	"github.com/pdiddy/research-assistant/internal/logging"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// fakeIndex serves Total synthetic papers. Pages listed in short return
// fewer papers than requested; errAt fails the call for a start offset;
// empty returns a page with no papers for a start offset.
type fakeIndex struct {
	Total int
	short map[int]int
	errAt map[int]error
	empty map[int]bool
	calls []types.SearchParams
}

func (f *fakeIndex) Search(_ context.Context, p types.SearchParams) (*types.ResultPage, error) {
	f.calls = append(f.calls, p)
	if err, ok := f.errAt[p.Start]; ok {
		return nil, err
	}
	page := &types.ResultPage{Query: p.Query, Start: p.Start, Total: f.Total}
	if f.empty[p.Start] {
		return page, nil
	}
	n := p.MaxResults
	if s, ok := f.short[p.Start]; ok {
		n = s
	}
	for i := p.Start; i < p.Start+n && i < f.Total; i++ {
		page.Papers = append(page.Papers, testPaper(i))
	}
	return page, nil
}

func testPaper(i int) types.Paper {
	id := fmt.Sprintf("2401.%05dv1", i)
	return types.Paper{
		ID:       id,
		Title:    fmt.Sprintf("Paper Number %d", i),
		Authors:  []string{fmt.Sprintf("Alice Author%d", i), "Bob Builder"},
		Abstract: "An abstract long enough to be used as part of the related-work search query for this paper.",
		AbsURL:   "https://arxiv.org/abs/" + id,
		PDFURL:   "https://arxiv.org/pdf/" + id,
	}
}

// fakeFetcher writes a small file per paper into Dir and counts fetches.
type fakeFetcher struct {
	Dir   string
	fail  map[string]error
	calls map[string]int
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	return &fakeFetcher{Dir: t.TempDir(), fail: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, p *types.Paper) (string, bool, error) {
	f.calls[p.ID]++
	if err, ok := f.fail[p.ID]; ok {
		return "", false, err
	}
	path := filepath.Join(f.Dir, p.ID+".pdf")
	if _, err := os.Stat(path); err == nil {
		return path, true, nil
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		return "", false, err
	}
	return path, false, nil
}

func (f *fakeFetcher) total() int {
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// fakeAI records every call. Uploaded files are active unless listed in
// uploadErr; state overrides what Status reports for a file name.
type fakeAI struct {
	uploads   []string
	uploadErr map[string]error
	state     map[string]types.FileState
	statusErr map[string]error
	deleted   []string
	asked     []string
	compared  [][]string
	kinds     []string
	keywords  []string
	kwErr     error
	seq       int
}

func newFakeAI() *fakeAI {
	return &fakeAI{
		uploadErr: map[string]error{},
		state:     map[string]types.FileState{},
		statusErr: map[string]error{},
	}
}

func (f *fakeAI) Upload(_ context.Context, path string) (*types.RemoteFile, error) {
	f.uploads = append(f.uploads, path)
	if err, ok := f.uploadErr[path]; ok {
		return nil, err
	}
	f.seq++
	name := fmt.Sprintf("files/%d", f.seq)
	f.state[name] = types.FileStateActive
	return &types.RemoteFile{Name: name, DisplayName: filepath.Base(path), State: types.FileStateActive}, nil
}

func (f *fakeAI) Status(_ context.Context, name string) (*types.RemoteFile, error) {
	if err, ok := f.statusErr[name]; ok {
		return nil, err
	}
	return &types.RemoteFile{Name: name, State: f.state[name]}, nil
}

func (f *fakeAI) Delete(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func (f *fakeAI) Ask(_ context.Context, model string, file *types.RemoteFile, question string, figure bool) (string, error) {
	f.asked = append(f.asked, fmt.Sprintf("%s|%s|%s|%v", model, file.Name, question, figure))
	return "the answer", nil
}

func (f *fakeAI) Summarize(_ context.Context, _ string, file *types.RemoteFile, style string) (string, error) {
	return "summary(" + style + ") of " + file.Name, nil
}

func (f *fakeAI) Extract(_ context.Context, _ string, _ *types.RemoteFile, key string) (string, error) {
	return `{"` + key + `": []}`, nil
}

func (f *fakeAI) Compare(_ context.Context, _ string, files []*types.RemoteFile, kind string) (string, error) {
	var names []string
	for _, file := range files {
		names = append(names, file.Name)
	}
	f.compared = append(f.compared, names)
	f.kinds = append(f.kinds, kind)
	return "comparison", nil
}

func (f *fakeAI) Keywords(context.Context, string, *types.Paper) ([]string, error) {
	if f.kwErr != nil {
		return nil, f.kwErr
	}
	return f.keywords, nil
}

type fakeRelated struct {
	queries []string
	results []types.RelatedResult
	err     error
}

func (f *fakeRelated) Search(_ context.Context, q string) ([]types.RelatedResult, error) {
	f.queries = append(f.queries, q)
	return f.results, f.err
}

type fakeLibrary struct {
	recorded []string
	err      error
}

func (f *fakeLibrary) Record(_ context.Context, p *types.Paper, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, p.ID)
	return nil
}

func (f *fakeLibrary) List(context.Context, int) ([]library.Entry, error) {
	var out []library.Entry
	for _, id := range f.recorded {
		out = append(out, library.Entry{ID: id, Title: "Recorded " + id})
	}
	return out, nil
}

type harness struct {
	c       *Controller
	index   *fakeIndex
	fetcher *fakeFetcher
	ai      *fakeAI
	related *fakeRelated
	library *fakeLibrary
}

func newHarness(t *testing.T, total int) *harness {
	t.Helper()
	h := &harness{
		index:   &fakeIndex{Total: total},
		fetcher: newFakeFetcher(t),
		ai:      newFakeAI(),
		related: &fakeRelated{},
		library: &fakeLibrary{},
	}
	h.c = New(Options{
		Index:      h.index,
		Fetcher:    h.fetcher,
		AI:         h.ai,
		Related:    h.related,
		Library:    h.library,
		MaxResults: 10,
		Model:      "test-model",
		Log:        logging.Discard(),
	})
	return h
}

var errNetwork = types.NewError(types.KindTransport, "fake", errors.New("connection reset"))
