package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StaticPrefix は静的アセットを配信するURLプレフィックス
const StaticPrefix = "/static"

// route はルートテーブルの1エントリ
type route struct {
	pattern string
	handler gin.HandlerFunc
}

// routes は公開するルートを登録順に返す
func (s *Server) routes() []route {
	return []route{
		{pattern: "/", handler: s.handleIndex},
		{pattern: StaticPrefix + "/*filepath", handler: s.handleStatic},
	}
}

// setupRoutes はルートテーブルを engine に登録する
// 各ルートは GET と HEAD を受け付け、それ以外のメソッドは 405 になる
func (s *Server) setupRoutes() {
	for _, r := range s.routes() {
		s.engine.Handle(http.MethodGet, r.pattern, r.handler)
		s.engine.Handle(http.MethodHead, r.pattern, r.handler)
	}
}
