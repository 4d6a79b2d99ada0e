package handler

import (
	"github.com/gin-gonic/gin"
)

// operatorHeader 上游网关注入的操作者标识头
// 认证鉴权由外部系统承担，本服务只透传操作者 ID 作为审计字段
const operatorHeader = "X-Operator-ID"

// OperatorID 从请求头提取操作者 ID；缺失时返回 "system"
func OperatorID(c *gin.Context) string {
	if id := c.GetHeader(operatorHeader); id != "" {
		return id
	}
	return "system"
}
