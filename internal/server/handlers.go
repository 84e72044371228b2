package server

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartlighting/internal/site"
)

// handleIndex はインデックステンプレートをそのまま返す
// テンプレートはリクエスト毎に読み込む
func (s *Server) handleIndex(c *gin.Context) {
	data, err := fs.ReadFile(s.templates, s.config.Site.IndexTemplate)
	if err != nil {
		s.requestLogger(c).WithError(err).
			WithField("template", s.config.Site.IndexTemplate).
			Error("テンプレートの読み込みに失敗しました")
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// handleStatic は静的アセットディレクトリのファイルを返す
func (s *Server) handleStatic(c *gin.Context) {
	raw := c.Param("filepath")

	name, err := site.CleanName(raw)
	if err != nil {
		s.notFound(c, raw, err)
		return
	}

	f, err := s.static.Open(name)
	if err != nil {
		s.notFound(c, raw, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.notFound(c, raw, err)
		return
	}
	// ディレクトリの一覧は返さない
	if info.IsDir() {
		s.notFound(c, raw, nil)
		return
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			s.requestLogger(c).WithError(err).WithField("file", name).Error("ファイルの読み込みに失敗しました")
			c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			return
		}
		content = bytes.NewReader(data)
	}

	// Content-Type は拡張子から決まる。条件付きGETと Range にも対応する
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), content)
}

func (s *Server) notFound(c *gin.Context, raw string, reason error) {
	entry := s.requestLogger(c).WithField("file", raw)
	if reason != nil {
		entry = entry.WithError(reason)
	}
	entry.Debug("静的ファイルが見つかりません")

	c.String(http.StatusNotFound, "404 page not found")
}
