package asset

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// DefaultMaxImageBytes は受け付ける画像サイズの上限です。
const DefaultMaxImageBytes int64 = 20 << 20

var (
	// ErrNotImage は画像以外のファイルが渡されたときに返されます。
	ErrNotImage = errors.New("file is not an image")
	// ErrImageTooLarge は画像サイズが上限を超えたときに返されます。
	ErrImageTooLarge = errors.New("image is too large")
	// ErrEmptyImage は空のデータが渡されたときに返されます。
	ErrEmptyImage = errors.New("image is empty")
)

// NewUploadedImage は画像データの中身から MIME タイプを判定し、UploadedImage を組み立てます。
// 画像でない場合は ErrNotImage を返します。
func NewUploadedImage(data []byte) (domain.UploadedImage, error) {
	if len(data) == 0 {
		return domain.UploadedImage{}, ErrEmptyImage
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return domain.UploadedImage{}, fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	// パラメータ付きの MIME タイプ (image/svg+xml; charset=utf-8 等) は本体だけを使う
	mimeType, _, _ := strings.Cut(mtype.String(), ";")
	b64 := base64.StdEncoding.EncodeToString(data)
	return domain.UploadedImage{
		Base64:     b64,
		MimeType:   mimeType,
		PreviewURL: domain.BuildPreviewURL(mimeType, b64),
	}, nil
}

// ReadImage は r から最大 maxBytes まで読み込み、UploadedImage を返します。
func ReadImage(r io.Reader, maxBytes int64) (domain.UploadedImage, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("画像の読み込みに失敗しました: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return domain.UploadedImage{}, fmt.Errorf("%w: limit %d bytes", ErrImageTooLarge, maxBytes)
	}
	return NewUploadedImage(data)
}

// LoadImageFile はローカルファイルから画像を読み込みます。
func LoadImageFile(path string, maxBytes int64) (domain.UploadedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("画像ファイルのオープンに失敗しました (%s): %w", path, err)
	}
	defer f.Close()

	img, err := ReadImage(f, maxBytes)
	if err != nil {
		return domain.UploadedImage{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
