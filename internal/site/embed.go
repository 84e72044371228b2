package site

import (
	"embed"
	"io/fs"
)

//go:embed all:web
var embedFS embed.FS

// Embedded は埋め込みのテンプレートと静的アセットのファイルシステムを返す
func Embedded() (templates fs.FS, static fs.FS) {
	return mustSub("web/templates"), mustSub("web/static")
}

func mustSub(dir string) fs.FS {
	sub, err := fs.Sub(embedFS, dir)
	if err != nil {
		// 埋め込みパスは固定なので失敗しない
		panic("埋め込みファイルシステムの作成に失敗: " + err.Error())
	}
	return sub
}
