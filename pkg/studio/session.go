package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// 画面に表示するエラーメッセージです。
const (
	AnalyzeFailedMessage    = "Gagal menganalisa gambar. Pastikan API Key valid atau coba gambar lain."
	RegenerateFailedMessage = "Gagal membuat ulang konsep. Silakan coba lagi."
)

var (
	// ErrBusy は生成中に競合する操作が行われたときに返されます。
	ErrBusy = errors.New("session is busy")
	// ErrNoImage は画像が選択されていないときに返されます。
	ErrNoImage = errors.New("no image selected")
	// ErrNoAnalysis は差し替え対象のコンセプトがまだないときに返されます。
	ErrNoAnalysis = errors.New("no concepts generated yet")
	// ErrGenerationFailed はフル生成に失敗したときに返されます。原因はラップされています。
	ErrGenerationFailed = errors.New("generation failed")
)

// Runner はセッションが使うコンセプト生成の契約です。
type Runner interface {
	Run(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.AnalysisResponse, error)
	RunSingle(ctx context.Context, image domain.UploadedImage, opts domain.GenerationOptions) (domain.UGCConcept, error)
}

// Snapshot は描画用のセッション状態のコピーです。
type Snapshot struct {
	ID               string                            `json:"id"`
	Image            *domain.UploadedImage             `json:"image,omitempty"`
	Analysis         *domain.AnalysisResponse          `json:"analysis,omitempty"`
	Options          domain.GenerationOptions          `json:"options"`
	Loading          bool                              `json:"loading"`
	Regenerating     []int                             `json:"regenerating"`
	Error            string                            `json:"error,omitempty"`
	ModeDescriptions map[string]domain.ModeDescription `json:"modeDescriptions,omitempty"`
	UpdatedAt        time.Time                         `json:"updatedAt"`
}

// IsRegenerating は index のコンセプトが再生成中かどうかを返します。
func (s Snapshot) IsRegenerating(index int) bool {
	for _, i := range s.Regenerating {
		if i == index {
			return true
		}
	}
	return false
}

// Session は1ユーザー分のスタジオ状態です。
// 外部呼び出しはロックの外で行います。
type Session struct {
	mu     sync.Mutex
	id     string
	runner Runner

	image        *domain.UploadedImage
	analysis     *domain.AnalysisResponse
	options      domain.GenerationOptions
	loading      bool
	regenerating map[int]bool
	errMsg       string
	updatedAt    time.Time
}

// New は空のセッションを作成します。
func New(id string, runner Runner, opts domain.GenerationOptions) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		id:           id,
		runner:       runner,
		options:      opts,
		regenerating: make(map[int]bool),
		updatedAt:    time.Now(),
	}, nil
}

// ID はセッションIDを返します。
func (s *Session) ID() string { return s.id }

// busy はロック保持中に呼び出すこと
func (s *Session) busy() bool {
	return s.loading || len(s.regenerating) > 0
}

func (s *Session) touch() { s.updatedAt = time.Now() }

// SetOptions は生成オプションを変更します。生成中は ErrBusy を返します。
func (s *Session) SetOptions(opts domain.GenerationOptions) (Snapshot, error) {
	if err := opts.Validate(); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy() {
		return s.snapshotLocked(), ErrBusy
	}
	s.options = opts
	s.touch()
	return s.snapshotLocked(), nil
}

// SelectImage は画像を設定し、現在のオプションでフル生成を実行します。
func (s *Session) SelectImage(ctx context.Context, image domain.UploadedImage) (Snapshot, error) {
	return s.runFull(ctx, &image, AnalyzeFailedMessage)
}

// RegenerateAll は現在の画像とオプションでコンセプトを作り直します。
func (s *Session) RegenerateAll(ctx context.Context) (Snapshot, error) {
	return s.runFull(ctx, nil, RegenerateFailedMessage)
}

// runFull は既存の結果を破棄してからフル生成を行います。image が nil の場合は現在の画像を使います。
func (s *Session) runFull(ctx context.Context, image *domain.UploadedImage, failMessage string) (Snapshot, error) {
	s.mu.Lock()
	if s.busy() {
		defer s.mu.Unlock()
		return s.snapshotLocked(), ErrBusy
	}
	if image != nil {
		s.image = image
	}
	if s.image == nil {
		defer s.mu.Unlock()
		return s.snapshotLocked(), ErrNoImage
	}
	s.analysis = nil
	s.errMsg = ""
	s.loading = true
	s.touch()
	img := *s.image
	opts := s.options
	s.mu.Unlock()

	resp, err := s.runner.Run(ctx, img, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.touch()
	if err != nil {
		slog.ErrorContext(ctx, "コンセプト生成に失敗しました", "session_id", s.id, "error", err)
		s.analysis = nil
		s.errMsg = failMessage
		return s.snapshotLocked(), fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	s.analysis = &resp
	return s.snapshotLocked(), nil
}

// RegenerateConcept は index のコンセプトだけを作り直します。
// 失敗しても既存の結果とエラー表示は変更せず、regenerated=false を返します。
func (s *Session) RegenerateConcept(ctx context.Context, index int) (snap Snapshot, regenerated bool, err error) {
	s.mu.Lock()
	switch {
	case s.image == nil:
		err = ErrNoImage
	case s.analysis == nil:
		err = ErrNoAnalysis
	case index < 0 || index >= len(s.analysis.Concepts):
		err = fmt.Errorf("%w: %d", domain.ErrConceptIndexOutOfRange, index)
	case s.loading || s.regenerating[index]:
		err = ErrBusy
	}
	if err != nil {
		defer s.mu.Unlock()
		return s.snapshotLocked(), false, err
	}
	s.regenerating[index] = true
	s.touch()
	image := *s.image
	opts := s.options
	s.mu.Unlock()

	concept, runErr := s.runner.RunSingle(ctx, image, opts)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regenerating, index)
	s.touch()
	if runErr != nil {
		slog.WarnContext(ctx, "コンセプトの再生成に失敗しました", "session_id", s.id, "index", index, "error", runErr)
		return s.snapshotLocked(), false, nil
	}

	replaced, err := s.analysis.ReplaceConcept(index, concept)
	if err != nil {
		return s.snapshotLocked(), false, err
	}
	s.analysis = &replaced
	return s.snapshotLocked(), true, nil
}

// Reset は画像・結果・エラーを消去します。オプションは保持します。
func (s *Session) Reset() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy() {
		return s.snapshotLocked(), ErrBusy
	}
	s.image = nil
	s.analysis = nil
	s.errMsg = ""
	s.touch()
	return s.snapshotLocked(), nil
}

// Snapshot は現在の状態のコピーを返します。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:               s.id,
		Options:          s.options,
		Loading:          s.loading,
		Regenerating:     make([]int, 0, len(s.regenerating)),
		Error:            s.errMsg,
		ModeDescriptions: domain.ModeDescriptions,
		UpdatedAt:        s.updatedAt,
	}
	if s.image != nil {
		img := *s.image
		snap.Image = &img
	}
	if s.analysis != nil {
		a := s.analysis.Clone()
		snap.Analysis = &a
	}
	for i := range s.regenerating {
		snap.Regenerating = append(snap.Regenerating, i)
	}
	sort.Ints(snap.Regenerating)
	return snap
}
