package handler

import (
	"errors"
	"net/http"

	"linktrack-platform/internal/correlator"
	"linktrack-platform/internal/linkid"
	"linktrack-platform/internal/platform"
	"linktrack-platform/internal/store"
	"linktrack-platform/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GatewayHandler 机器人网关的入口: 深链点击与群组消息的转发端点
// 这两个端点走内网，不做用户鉴权，与跳转端点在原型里的地位相同
type GatewayHandler struct {
	svc  *tracker.Service
	corr *correlator.Correlator
}

// NewGatewayHandler 创建网关处理器
func NewGatewayHandler(svc *tracker.Service, corr *correlator.Correlator) *GatewayHandler {
	return &GatewayHandler{svc: svc, corr: corr}
}

// ClickRequest 深链点击上报
type ClickRequest struct {
	Payload string            `json:"payload" binding:"required" example:"mychannel-ab3-fb"`
	Clicker platform.UserInfo `json:"clicker" binding:"required"`
}

// HandleClick godoc
// @Summary 深链点击上报
// @Description 网关收到 /start 深链后转发到这里，返回应展示给用户的目标地址
// @Tags Gateway
// @Accept  json
// @Produce  json
// @Param   click  body   ClickRequest  true  "点击载荷与点击者身份"
// @Success 200 {object} tracker.ClickResult
// @Failure 400 {object} gin.H "载荷格式无效"
// @Failure 404 {object} gin.H "链接不存在或已过期"
// @Router /gateway/clicks [post]
func (h *GatewayHandler) HandleClick(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	result, err := h.svc.HandleClick(c.Request.Context(), req.Payload, req.Clicker)
	if err != nil {
		switch {
		case errors.Is(err, linkid.ErrBadPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "链接格式无效"})
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在或已过期"})
		default:
			zap.S().Errorf("处理点击失败: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "处理点击失败"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleMessage godoc
// @Summary 群组消息上报
// @Description 网关把群组/频道消息转发到这里做活动关联，永远返回 202
// @Tags Gateway
// @Accept  json
// @Produce  json
// @Param   message  body   platform.IncomingMessage  true  "消息内容"
// @Success 202 {object} gin.H
// @Router /gateway/messages [post]
func (h *GatewayHandler) HandleMessage(c *gin.Context) {
	var msg platform.IncomingMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	// 关联器内部消化所有错误，不影响网关的消息链路
	h.corr.HandleMessage(c.Request.Context(), msg)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
