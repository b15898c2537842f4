// Package snapshot はバイナリのタイルスナップショットをデコードする
package snapshot

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"tilebench/internal/grid"
	"tilebench/internal/protocol"
)

// minEnvelopeSize はFlatBuffersエンベロープの最小サイズ
// （ルートオフセット4バイト + 最小vtable）
const minEnvelopeSize = 8

// DecodeError は不正または切り詰められたスナップショットを表す
// ワーカーにとっては致命的ではなく、ログして読み飛ばす
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "snapshot decode failed: " + e.Reason
}

// Snapshot はデコード済みのタイル領域
// 1回の検証パスの間だけ読み取り専用で使われる
type Snapshot struct {
	X      int    // 領域原点のX座標
	Y      int    // 領域原点のY座標
	Width  int    // 領域の幅（セル数）
	Height int    // 領域の高さ（セル数）
	Tiles  []byte // 行優先・リトルエンディアンの色バッファ
}

// Decode はバイナリエンベロープをデコードする
// ワイヤ上のwidthが0の場合はdefaultWidthを全幅として使う
// 不正なバッファには*DecodeErrorを返す（パニックは伝播しない）
func Decode(buf []byte, defaultWidth int) (snap *Snapshot, err error) {
	if len(buf) < minEnvelopeSize {
		return nil, &DecodeError{Reason: fmt.Sprintf("buffer too short (%d bytes)", len(buf))}
	}

	// FlatBuffers accessors panic on corrupt offsets.
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = &DecodeError{Reason: fmt.Sprintf("malformed envelope: %v", r)}
		}
	}()

	update := protocol.GetRootAsTileMapUpdate(buf, 0)

	tab := update.Table()
	vo := flatbuffers.UOffsetT(tab.Offset(8)) // tiles vector slot
	if vo == 0 {
		return nil, &DecodeError{Reason: "envelope has no tiles vector"}
	}
	count := tab.VectorLen(vo)
	if count == 0 {
		return nil, &DecodeError{Reason: "tiles vector is empty"}
	}

	width := int(update.Width())
	if width == 0 {
		width = defaultWidth
	}
	if width <= 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("invalid width %d", width)}
	}
	if count%width != 0 {
		return nil, &DecodeError{Reason: fmt.Sprintf("tile count %d not divisible by width %d", count, width)}
	}

	// The vector elements are already little-endian uint32s; view them
	// directly as the raw byte buffer instead of copying element-wise.
	start := tab.Vector(vo)
	end := int(start) + count*grid.ColorSize
	if end > len(tab.Bytes) {
		return nil, &DecodeError{Reason: "tiles vector exceeds buffer"}
	}

	return &Snapshot{
		X:      int(update.X()),
		Y:      int(update.Y()),
		Width:  width,
		Height: count / width,
		Tiles:  tab.Bytes[start:end],
	}, nil
}

// Contains は(x, y)がこのスナップショットの領域に含まれるかを返す
func (s *Snapshot) Contains(x, y int) bool {
	return x >= s.X && x < s.X+s.Width && y >= s.Y && y < s.Y+s.Height
}

// At は領域内の(x, y)に対応する4バイトの色を返す
// 呼び出し側はContainsで領域内であることを確認すること
func (s *Snapshot) At(x, y int) []byte {
	off := grid.Offset(x-s.X, y-s.Y, s.Width)
	return s.Tiles[off : off+grid.ColorSize]
}
