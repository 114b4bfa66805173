package public

import (
	handlershared "github.com/findesk/findesk-api/internal/http/handlers/shared"
	"github.com/findesk/findesk-api/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 支付接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建支付处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}
