// Package tilemap は参照サーバーが保持するインメモリのタイルグリッド
package tilemap

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Map は固定サイズのピクセルグリッド
// すべての操作は並行安全
type Map struct {
	width  int
	height int

	mu    sync.RWMutex
	cells []uint32

	writes atomic.Uint64
}

// New は新しいタイルマップを作成する
func New(width, height int) *Map {
	return &Map{
		width:  width,
		height: height,
		cells:  make([]uint32, width*height),
	}
}

// Set は(x, y)のセルに色を書き込む
func (m *Map) Set(x, y int, color uint32) error {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return fmt.Errorf("coordinate (%d,%d) out of bounds for %dx%d grid", x, y, m.width, m.height)
	}

	m.mu.Lock()
	m.cells[x+y*m.width] = color
	m.mu.Unlock()

	m.writes.Add(1)
	return nil
}

// Get は(x, y)のセルの色を返す
func (m *Map) Get(x, y int) (uint32, bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[x+y*m.width], true
}

// Snapshot はグリッド全体のコピーを行優先で返す
func (m *Map) Snapshot() []uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]uint32, len(m.cells))
	copy(out, m.cells)
	return out
}

// Width はグリッドの幅を返す
func (m *Map) Width() int {
	return m.width
}

// Height はグリッドの高さを返す
func (m *Map) Height() int {
	return m.height
}

// Writes は書き込みの総数を返す
func (m *Map) Writes() uint64 {
	return m.writes.Load()
}
