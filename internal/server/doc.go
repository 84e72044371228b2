// Package server は、サイトを配信するHTTPサーバーを管理します。
//
// このパッケージは、HTTPサーバーの起動、ルーティング、
// インデックスページと静的ファイルの配信を担当します。
//
// 責務:
//   - HTTPサーバーの起動と管理
//   - ルートパスでのインデックステンプレートの配信
//   - /static/ 配下の静的ファイル（HTML/CSS/JS/JSON）の配信
//   - パストラバーサルの拒否
//   - 運用リスナー（/metrics, /healthz）の提供
//
// 仕様:
//   - HTTPフレームワークは gin を使用
//   - ルートは登録順の固定テーブルで定義
//   - グレースフルシャットダウンに対応
//   - ファイルシステムへの書き込みは行わない
package server
