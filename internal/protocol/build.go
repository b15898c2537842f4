package protocol

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// BuildTileMapUpdate はスナップショットのエンベロープを組み立てる
// tilesは行優先の色バッファ、widthは0でグリッド全幅を意味する
func BuildTileMapUpdate(x, y, width uint32, tiles []uint32) []byte {
	builder := flatbuffers.NewBuilder(len(tiles)*4 + 64)

	TileMapUpdateStartTilesVector(builder, len(tiles))
	for i := len(tiles) - 1; i >= 0; i-- {
		builder.PrependUint32(tiles[i])
	}
	vec := builder.EndVector(len(tiles))

	TileMapUpdateStart(builder)
	TileMapUpdateAddX(builder, x)
	TileMapUpdateAddY(builder, y)
	TileMapUpdateAddTiles(builder, vec)
	TileMapUpdateAddWidth(builder, width)
	update := TileMapUpdateEnd(builder)
	builder.Finish(update)

	return builder.FinishedBytes()
}
