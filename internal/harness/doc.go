// Package harness は複数ワーカーの実行と結果集計を提供する。
//
// Engineは設定されたワーカー数だけ独立したクライアントを起動し、
// 固定の実行時間だけタイルサーバーに負荷をかけ、送信した書き込みが
// スナップショットに正しく現れることを検証する。ワーカー間の調整は
// 行わず、唯一の共有リソースは読み取り専用のワークロードだけ。
//
// # 判定
//
// 1つでも不一致（closed_mismatch）または接続エラーで終了したワーカーが
// あれば実行全体が失敗。全ワーカーがclosed_normalなら成功。
//
// # プリセット
//
// - quick: 短時間の動作確認（デフォルト）
// - stress: 高負荷ストレス実行
// - soak: 長時間の持続検証
// - selftest: 組み込み参照サーバーに対する自己検証
//
// # 使用例
//
//	config := harness.SelfTestRun()
//	engine := harness.New(config)
//	result, err := engine.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report())
package harness
