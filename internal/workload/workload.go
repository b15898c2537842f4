// Package workload はランダムな書き込みリクエストのプールを生成する
package workload

import (
	"encoding/json"
	"math/rand"
)

// Write は1ピクセルの色変更を表す（生成後は不変）
type Write struct {
	X     uint32 `json:"x"`
	Y     uint32 `json:"y"`
	Color uint32 `json:"color"`
}

// Entry はシリアライズ済みリクエストとその期待値のペア
// 両者は同一の値から同時に生成される
type Entry struct {
	Payload []byte // 送信するJSONペイロード
	Expect  Write  // 検証に使う期待値
}

// Pool は生成済みワークロードの読み取り専用プール
// 生成後は変更されないため複数のワーカーで共有できる
type Pool struct {
	entries []Entry
}

// NewPool は既存のエントリ列からプールを作成する
func NewPool(entries []Entry) *Pool {
	return &Pool{entries: entries}
}

// Generate はcount個の(リクエスト, 期待値)ペアを生成する
// x, y は [0, gridWidth)、color は [0, colorRange] の範囲
// 重複は許容される（チェッカーはlast-write-winsを仮定する）
func Generate(count, gridWidth int, colorRange uint32, rng *rand.Rand) *Pool {
	entries := make([]Entry, 0, count)
	for range count {
		w := Write{
			X:     uint32(rng.Intn(gridWidth)),
			Y:     uint32(rng.Intn(gridWidth)),
			Color: uint32(rng.Int63n(int64(colorRange) + 1)),
		}
		payload, err := json.Marshal(w)
		if err != nil {
			// Write has no unmarshalable fields; this cannot happen.
			continue
		}
		entries = append(entries, Entry{Payload: payload, Expect: w})
	}
	return &Pool{entries: entries}
}

// Pick はプールから一様ランダムにエントリを1つ返す
func (p *Pool) Pick(rng *rand.Rand) Entry {
	return p.entries[rng.Intn(len(p.entries))]
}

// Len はプールのエントリ数を返す
func (p *Pool) Len() int {
	return len(p.entries)
}
