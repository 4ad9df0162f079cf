package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// fakeRunner は呼び出しごとに連番のタイトルを返すのだ
type fakeRunner struct {
	mu        sync.Mutex
	fullErr   error
	singleErr error
	fullCalls int
	singles   int
	lastOpts  domain.GenerationOptions

	// block が nil でなければ、呼び出しは close されるまで待つのだ
	block   chan struct{}
	entered chan struct{}
}

func concept(title string, scenes int) domain.UGCConcept {
	c := domain.UGCConcept{Title: title, Strategy: "s"}
	for i := 0; i < scenes; i++ {
		c.Scenes = append(c.Scenes, domain.Scene{Title: fmt.Sprintf("%s-%d", title, i), VideoGenPrompt: "p"})
	}
	return c
}

func (f *fakeRunner) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeRunner) Run(_ context.Context, _ domain.UploadedImage, opts domain.GenerationOptions) (domain.AnalysisResponse, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullCalls++
	f.lastOpts = opts
	if f.fullErr != nil {
		return domain.AnalysisResponse{}, f.fullErr
	}
	n := opts.SceneCount
	return domain.AnalysisResponse{Concepts: []domain.UGCConcept{
		concept(fmt.Sprintf("full%d-a", f.fullCalls), n),
		concept(fmt.Sprintf("full%d-b", f.fullCalls), n),
		concept(fmt.Sprintf("full%d-c", f.fullCalls), n),
	}}, nil
}

func (f *fakeRunner) RunSingle(_ context.Context, _ domain.UploadedImage, opts domain.GenerationOptions) (domain.UGCConcept, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.singles++
	if f.singleErr != nil {
		return domain.UGCConcept{}, f.singleErr
	}
	return concept(fmt.Sprintf("single%d", f.singles), opts.SceneCount), nil
}

var productImage = domain.UploadedImage{Base64: "aGVsbG8=", MimeType: "image/png", PreviewURL: "data:image/png;base64,aGVsbG8="}

func newSession(t *testing.T, r Runner) *Session {
	t.Helper()
	s, err := New("sess-1", r, domain.DefaultGenerationOptions())
	require.NoError(t, err)
	return s
}

func TestSession_SelectImage(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)

	snap, err := s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	require.NotNil(t, snap.Image)
	require.NotNil(t, snap.Analysis)
	assert.Len(t, snap.Analysis.Concepts, 3)
	assert.NotEmpty(t, snap.ModeDescriptions)
}

func TestSession_SelectImage_Failure(t *testing.T) {
	r := &fakeRunner{fullErr: errors.New("bad key")}
	s := newSession(t, r)

	snap, err := s.SelectImage(context.Background(), productImage)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.Nil(t, snap.Analysis)
	assert.Equal(t, AnalyzeFailedMessage, snap.Error)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Image, "画像は保持されるのだ")
}

func TestSession_RegenerateAll(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)

	_, err := s.RegenerateAll(context.Background())
	assert.ErrorIs(t, err, ErrNoImage)

	_, err = s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)

	snap, err := s.RegenerateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "full2-a", snap.Analysis.Concepts[0].Title, "前の結果は破棄されるのだ")

	r.fullErr = errors.New("boom")
	snap, err = s.RegenerateAll(context.Background())
	assert.Error(t, err)
	assert.Nil(t, snap.Analysis)
	assert.Equal(t, RegenerateFailedMessage, snap.Error)
}

func TestSession_RegenerateConcept(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)
	before, err := s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)

	snap, ok, err := s.RegenerateConcept(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "single1", snap.Analysis.Concepts[1].Title)
	assert.Equal(t, before.Analysis.Concepts[0], snap.Analysis.Concepts[0])
	assert.Equal(t, before.Analysis.Concepts[2], snap.Analysis.Concepts[2])
	assert.Empty(t, snap.Regenerating)
}

func TestSession_RegenerateConcept_FailureIsSilent(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)
	before, err := s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)

	r.singleErr = errors.New("quota")
	snap, ok, err := s.RegenerateConcept(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, snap.Error, "単体再生成の失敗はバナーを出さないのだ")
	assert.Equal(t, before.Analysis, snap.Analysis)
	assert.Empty(t, snap.Regenerating)
}

func TestSession_RegenerateConcept_Preconditions(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)

	_, _, err := s.RegenerateConcept(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoImage)

	r.fullErr = errors.New("x")
	_, _ = s.SelectImage(context.Background(), productImage)
	_, _, err = s.RegenerateConcept(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoAnalysis)

	r.fullErr = nil
	_, err = s.RegenerateAll(context.Background())
	require.NoError(t, err)
	for _, idx := range []int{-1, 3} {
		_, _, err = s.RegenerateConcept(context.Background(), idx)
		assert.ErrorIs(t, err, domain.ErrConceptIndexOutOfRange)
	}
}

func TestSession_BusyWhileLoading(t *testing.T) {
	r := &fakeRunner{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newSession(t, r)

	done := make(chan error, 1)
	go func() {
		_, err := s.SelectImage(context.Background(), productImage)
		done <- err
	}()
	<-r.entered

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Nil(t, snap.Analysis)

	_, err := s.SelectImage(context.Background(), productImage)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.RegenerateAll(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.SetOptions(domain.GenerationOptions{TextOverlayMode: domain.ModeNone, NarrationMode: domain.ModeNone, SceneCount: 2})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.Reset()
	assert.ErrorIs(t, err, ErrBusy)

	close(r.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, r.fullCalls)
}

func TestSession_BusyWhileRegeneratingConcept(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)
	_, err := s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)

	r.block = make(chan struct{})
	r.entered = make(chan struct{}, 1)
	done := make(chan bool, 1)
	go func() {
		_, ok, _ := s.RegenerateConcept(context.Background(), 0)
		done <- ok
	}()
	<-r.entered

	assert.True(t, s.Snapshot().IsRegenerating(0))
	_, _, err = s.RegenerateConcept(context.Background(), 0)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.RegenerateAll(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(r.block)
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("再生成が終わらないのだ")
	}
	assert.False(t, s.Snapshot().IsRegenerating(0))
}

func TestSession_SetOptionsAndReset(t *testing.T) {
	r := &fakeRunner{}
	s := newSession(t, r)

	_, err := s.SetOptions(domain.GenerationOptions{TextOverlayMode: domain.ModeManual, NarrationMode: domain.ModeManual, SceneCount: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidOptions)

	opts := domain.GenerationOptions{TextOverlayMode: domain.ModeMerged, NarrationMode: domain.ModeNone, SceneCount: 5}
	snap, err := s.SetOptions(opts)
	require.NoError(t, err)
	assert.Equal(t, opts, snap.Options)

	snap, err = s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)
	assert.Equal(t, opts, r.lastOpts)
	assert.Len(t, snap.Analysis.Concepts[0].Scenes, 5)

	snap, err = s.Reset()
	require.NoError(t, err)
	assert.Nil(t, snap.Image)
	assert.Nil(t, snap.Analysis)
	assert.Empty(t, snap.Error)
	assert.Equal(t, opts, snap.Options, "オプションは残るのだ")
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	s := newSession(t, &fakeRunner{})
	snap, err := s.SelectImage(context.Background(), productImage)
	require.NoError(t, err)

	snap.Analysis.Concepts[0].Scenes[0].Title = "mutated"
	assert.NotEqual(t, "mutated", s.Snapshot().Analysis.Concepts[0].Scenes[0].Title)
}
