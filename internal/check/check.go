// Package check は送信した書き込みとスナップショットの整合性を検証する
package check

import (
	"bytes"
	"fmt"

	"tilebench/internal/grid"
	"tilebench/internal/snapshot"
	"tilebench/internal/workload"
)

// Pending は送信済みでまだ検証されていない書き込みの記録
// ackが届いた書き込みだけが検証の対象になる
type Pending struct {
	Write workload.Write
	Acked bool
}

// MismatchError は送信した色とスナップショットの内容の不一致を表す
// 検出したワーカーにとって常に致命的
type MismatchError struct {
	X        uint32 // 書き込み先のX座標
	Y        uint32 // 書き込み先のY座標
	Offset   int    // スナップショットバッファ内のバイトオフセット
	Expected []byte // 期待した4バイト
	Actual   []byte // 実際の4バイト
	FoundAt  int    // 期待バイト列が最初に現れた位置（診断用、-1は不在）
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("data mismatch at (%d,%d): expected %v at offset %d, got %v (sequence found at %d)",
		e.X, e.Y, e.Expected, e.Offset, e.Actual, e.FoundAt)
}

// Verify はacked済みのpendingをスナップショットと突き合わせる
// 同一座標への書き込みが複数ある場合は最後のものだけが検証される
// （last-write-wins）。領域外の座標はこのスナップショットでは検証
// できないため読み飛ばす。最初の不一致で*MismatchErrorを返して
// 打ち切る（fail-fast）。同じ(pending, snap)に対して何度呼んでも
// 結果は変わらない
func Verify(pending []Pending, snap *snapshot.Snapshot) error {
	type coord struct{ x, y uint32 }
	last := make(map[coord]int, len(pending))
	for i, p := range pending {
		last[coord{p.Write.X, p.Write.Y}] = i
	}

	for i, p := range pending {
		if last[coord{p.Write.X, p.Write.Y}] != i {
			continue // superseded by a later write to the same cell
		}
		if !p.Acked {
			continue
		}
		x, y := int(p.Write.X), int(p.Write.Y)
		if !snap.Contains(x, y) {
			continue
		}

		expected := grid.EncodeColor(p.Write.Color)
		actual := snap.At(x, y)
		if bytes.Equal(expected[:], actual) {
			continue
		}

		// Linear scan for diagnostics only; pass/fail is decided above.
		return &MismatchError{
			X:        p.Write.X,
			Y:        p.Write.Y,
			Offset:   grid.Offset(x-snap.X, y-snap.Y, snap.Width),
			Expected: expected[:],
			Actual:   append([]byte(nil), actual...),
			FoundAt:  bytes.Index(snap.Tiles, expected[:]),
		}
	}
	return nil
}

// CountUnacked はackが届かないままのpendingの数を返す
// これらは検証されず、不確定として記録される
func CountUnacked(pending []Pending) int {
	n := 0
	for _, p := range pending {
		if !p.Acked {
			n++
		}
	}
	return n
}
