package domain

import (
	"encoding/base64"
	"fmt"
)

// UploadedImage はリクエストビルダーに渡される商品画像です。
type UploadedImage struct {
	Base64     string `json:"base64"`
	MimeType   string `json:"mimeType"`
	PreviewURL string `json:"previewUrl"`
}

// Bytes は Base64 ペイロードをデコードして返します。
func (img UploadedImage) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(img.Base64)
	if err != nil {
		return nil, fmt.Errorf("画像の base64 デコードに失敗しました: %w", err)
	}
	return data, nil
}

// BuildPreviewURL は MIME タイプと base64 から data URL を組み立てます。
func BuildPreviewURL(mimeType, b64 string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, b64)
}
