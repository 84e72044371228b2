// Package site は配信対象のテンプレートと静的アセットを提供します。
//
// 責務:
//   - ディスク上のディレクトリを fs.FS として公開する
//   - リクエストされたファイル名の正規化とパストラバーサルの拒否
//   - バイナリに埋め込まれたデフォルトサイトの提供
//
// 仕様:
//   - ファイルシステムへの書き込みは一切行わない
//   - ディレクトリ外への参照はシンボリックリンク経由も含めて拒否する
package site
