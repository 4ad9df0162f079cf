package domain

import (
	"errors"
	"fmt"
	"strings"
)

// シーン数の範囲とデフォルト値です。
const (
	MinSceneCount     = 1
	MaxSceneCount     = 10
	DefaultSceneCount = 3
)

// ErrInvalidOptions は生成オプションが不正なときに返されます。
var ErrInvalidOptions = errors.New("invalid generation options")

// GenerationMode はテキストオーバーレイやナレーションの出し方を表します。
type GenerationMode string

const (
	// ModeNone はフィールドを空にします。
	ModeNone GenerationMode = "none"
	// ModeManual はフィールドをそのまま残し、手動コピー用にします。
	ModeManual GenerationMode = "manual"
	// ModeMerged はフィールドの内容を動画プロンプトに追記します。
	ModeMerged GenerationMode = "merged"
)

// ParseGenerationMode は文字列からモードを解析します。空文字は manual として扱います。
func ParseGenerationMode(s string) (GenerationMode, error) {
	switch m := GenerationMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeNone, ModeManual, ModeMerged:
		return m, nil
	case "":
		return ModeManual, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want none, manual or merged)", ErrInvalidOptions, s)
	}
}

// Valid はモードが既知の値かどうかを返します。
func (m GenerationMode) Valid() bool {
	return m == ModeNone || m == ModeManual || m == ModeMerged
}

// UnmarshalText は JSON/TOML からの読み込み時にモードを検証します。
func (m *GenerationMode) UnmarshalText(text []byte) error {
	parsed, err := ParseGenerationMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// GenerationOptions は1回の生成リクエストに対するユーザー選択です。
type GenerationOptions struct {
	TextOverlayMode GenerationMode `json:"textOverlayMode" toml:"text_overlay_mode"`
	NarrationMode   GenerationMode `json:"narrationMode" toml:"narration_mode"`
	SceneCount      int            `json:"sceneCount" toml:"scene_count"`
}

// DefaultGenerationOptions は manual / manual / 3 シーンを返します。
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		TextOverlayMode: ModeManual,
		NarrationMode:   ModeManual,
		SceneCount:      DefaultSceneCount,
	}
}

// NewGenerationOptions は検証済みの GenerationOptions を生成します。
func NewGenerationOptions(textOverlay, narration GenerationMode, sceneCount int) (GenerationOptions, error) {
	opts := GenerationOptions{
		TextOverlayMode: textOverlay,
		NarrationMode:   narration,
		SceneCount:      sceneCount,
	}
	if err := opts.Validate(); err != nil {
		return GenerationOptions{}, err
	}
	return opts, nil
}

// Validate はモードとシーン数の範囲を検証します。
func (o GenerationOptions) Validate() error {
	if !o.TextOverlayMode.Valid() {
		return fmt.Errorf("%w: textOverlayMode %q", ErrInvalidOptions, o.TextOverlayMode)
	}
	if !o.NarrationMode.Valid() {
		return fmt.Errorf("%w: narrationMode %q", ErrInvalidOptions, o.NarrationMode)
	}
	if o.SceneCount < MinSceneCount || o.SceneCount > MaxSceneCount {
		return fmt.Errorf("%w: sceneCount %d must be between %d and %d", ErrInvalidOptions, o.SceneCount, MinSceneCount, MaxSceneCount)
	}
	return nil
}

// ModeDescription は UI のヘルプ表示用の説明文です。
type ModeDescription struct {
	Title  string `json:"title"`
	Manual string `json:"manual"`
	Merged string `json:"merged"`
	None   string `json:"none"`
}

// ModeDescriptions はチャンネル（text / narration）ごとの説明文です。
var ModeDescriptions = map[string]ModeDescription{
	"textOverlay": {
		Title:  "Tentang Opsi Teks Overlay",
		Manual: "AI akan membuatkan teks pendek terpisah. Anda bisa copy teks ini lalu paste manual di aplikasi editing (CapCut/Premiere).",
		Merged: "AI akan memasukkan instruksi teks langsung ke dalam Prompt Video. Gunakan ini jika AI Video Generator Anda (seperti Runway/Pika) sudah support generate text di dalam video.",
		None:   "Tidak akan ada ide teks overlay yang dibuat.",
	},
	"narration": {
		Title:  "Tentang Opsi Narasi / VO",
		Manual: "AI membuatkan naskah script terpisah. Anda bisa merekam suara sendiri atau menggunakan Text-to-Speech terpisah.",
		Merged: "Instruksi audio/naskah dimasukkan ke Prompt Video. Gunakan ini untuk tools generasi video yang support audio generation sekaligus (misal: Sora/Kling).",
		None:   "Tidak akan ada naskah narasi yang dibuat.",
	},
}
