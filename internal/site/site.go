package site

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidPath はディレクトリ外を指す、または不正な形式のファイル名
var ErrInvalidPath = errors.New("不正なファイルパス")

// Dir はディスク上のディレクトリを読み取り専用の fs.FS として扱う
//
// すべての参照は os.OpenInRoot を経由するため、".." やシンボリックリンクで
// ディレクトリの外に出ることはできない。
type Dir string

// Open は fs.FS の実装
func (d Dir) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	f, err := os.OpenInRoot(string(d), filepath.FromSlash(name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CleanName はURLから取り出したファイル名を fs.FS で開ける形に正規化する
//
// 先頭のスラッシュを取り除き、"a/../b.css" のような内部の相対参照は解決する。
// 正規化後もディレクトリの外を指す名前は ErrInvalidPath を返す。
func CleanName(raw string) (string, error) {
	name := strings.TrimPrefix(raw, "/")

	// NUL とバックスラッシュはどのOSでも受け付けない
	if strings.ContainsRune(name, 0) || strings.Contains(name, `\`) {
		return "", ErrInvalidPath
	}

	name = path.Clean(name)
	if !fs.ValidPath(name) {
		return "", ErrInvalidPath
	}

	return name, nil
}

// Check は fsys 上に name が存在するかを確認する
// 起動時の警告表示に使う
func Check(fsys fs.FS, name string) error {
	if _, err := fs.Stat(fsys, name); err != nil {
		return err
	}
	return nil
}
