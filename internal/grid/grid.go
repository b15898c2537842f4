// Package grid はタイルグリッドのオフセット計算と色のエンコードを提供する
package grid

import "encoding/binary"

const (
	// TileX はグリッドのデフォルト幅（セル数）
	TileX = 1000
	// ColorSize は1セルあたりのバイト数（リトルエンディアンの32bit色）
	ColorSize = 4
)

// Offset は幅widthのグリッドにおける(x, y)のフラットなバイトオフセットを返す
// 色エンコードの幅やグリッド幅を変える場合はここだけを変更する
func Offset(x, y, width int) int {
	return (x + y*width) * ColorSize
}

// EncodeColor は色をリトルエンディアンの4バイトにエンコードする
func EncodeColor(color uint32) [ColorSize]byte {
	var b [ColorSize]byte
	binary.LittleEndian.PutUint32(b[:], color)
	return b
}

// DecodeColor はリトルエンディアンの4バイトから色をデコードする
// bは少なくともColorSizeバイト必要
func DecodeColor(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
