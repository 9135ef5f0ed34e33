package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"linktrack-platform/internal/export"
	"linktrack-platform/internal/model"
	"linktrack-platform/internal/store"
	"linktrack-platform/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LinkHandler 所有者侧的链接管理与导出处理器
type LinkHandler struct {
	svc *tracker.Service
	agg *export.Aggregator
}

// NewLinkHandler 创建处理器实例
func NewLinkHandler(svc *tracker.Service, agg *export.Aggregator) *LinkHandler {
	return &LinkHandler{svc: svc, agg: agg}
}

// HealthCheck 健康检查
func (h *LinkHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
}

// CreateLinkRequest 创建追踪链接的请求体
type CreateLinkRequest struct {
	Target string `json:"target" binding:"required" example:"@mychannel"`
	Alias  string `json:"alias" example:"春季推广"`
}

// CreateLinkResponse 创建成功的响应
type CreateLinkResponse struct {
	LinkID     string `json:"link_id" example:"mychannel-ab3"`
	DeepLink   string `json:"deep_link" example:"https://t.me/TrackerBot?start=mychannel-ab3"`
	SourceHint string `json:"source_hint" example:"https://t.me/TrackerBot?start=mychannel-ab3-fb"`
}

// CreateLink godoc
// @Summary 创建追踪链接
// @Description 为目标群组/频道创建一条带归因的深链
// @Tags Link
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param   link  body   CreateLinkRequest  true  "目标引用"
// @Success 201 {object} CreateLinkResponse "成功响应"
// @Failure 400 {object} gin.H "目标无效"
// @Failure 500 {object} gin.H "服务器内部错误"
// @Router /api/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求数据: " + err.Error()})
		return
	}

	ownerID := currentUserID(c)
	link, err := h.svc.CreateLink(c.Request.Context(), ownerID, req.Target, req.Alias)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidTarget) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "无法从输入中提取有效的目标"})
			return
		}
		zap.S().Errorf("创建链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建链接失败"})
		return
	}

	deepLink := h.svc.DeepLink(link.LinkID)
	c.JSON(http.StatusCreated, CreateLinkResponse{
		LinkID:     link.LinkID,
		DeepLink:   deepLink,
		SourceHint: deepLink + "-fb",
	})
}

// ListLinks godoc
// @Summary 我的链接列表
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {array} model.TrackedLink
// @Router /api/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	links, err := h.svc.ListLinks(c.Request.Context(), currentUserID(c))
	if err != nil {
		zap.S().Errorf("查询链接列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取链接失败"})
		return
	}
	c.JSON(http.StatusOK, links)
}

// GetLink godoc
// @Summary 链接详情
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "link_id"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "链接不存在或无权访问"
// @Router /api/links/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"link":      link,
		"deep_link": h.svc.DeepLink(link.LinkID),
	})
}

// DeleteLink godoc
// @Summary 删除链接
// @Description 级联删除链接及其全部点击明细和活动记录
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "link_id"
// @Success 200 {object} gin.H
// @Failure 404 {object} gin.H "链接不存在或无权访问"
// @Router /api/links/{id} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	linkID := c.Param("id")
	err := h.svc.DeleteLink(c.Request.Context(), currentUserID(c), linkID)
	if err != nil {
		if isDenied(err) {
			denyLink(c)
			return
		}
		zap.S().Errorf("删除链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "链接及关联数据已删除"})
}

// ExportSummary godoc
// @Summary 汇总报表
// @Description 总点击、去重访客数和来源分布
// @Tags Export
// @Security ApiKeyAuth
// @Produce  json
// @Param   id  path  string  true  "link_id"
// @Success 200 {object} export.Summary
// @Failure 404 {object} gin.H "链接不存在或无权访问"
// @Router /api/links/{id}/export [get]
func (h *LinkHandler) ExportSummary(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}
	summary, err := h.agg.BuildSummary(c.Request.Context(), link)
	if err != nil {
		zap.S().Errorf("生成汇总报表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报表失败"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportRosterCSV godoc
// @Summary 访客名单 CSV
// @Description 去重访客名单，附成员状态和活动计数
// @Tags Export
// @Security ApiKeyAuth
// @Produce  text/csv
// @Param   id  path  string  true  "link_id"
// @Success 200 {string} string "CSV 内容"
// @Failure 404 {object} gin.H "链接不存在或无权访问"
// @Router /api/links/{id}/export/roster.csv [get]
func (h *LinkHandler) ExportRosterCSV(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}
	rows, err := h.agg.Roster(c.Request.Context(), link)
	if err != nil {
		zap.S().Errorf("生成名单报表失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报表失败"})
		return
	}
	data, err := export.RosterCSV(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "渲染 CSV 失败"})
		return
	}
	sendCSV(c, fmt.Sprintf("clicks_%s.csv", link.TargetReference), data)
}

// ExportActivityCSV godoc
// @Summary 活动记录 CSV
// @Tags Export
// @Security ApiKeyAuth
// @Produce  text/csv
// @Param   id  path  string  true  "link_id"
// @Success 200 {string} string "CSV 内容"
// @Failure 404 {object} gin.H "链接不存在或无权访问"
// @Router /api/links/{id}/export/activity.csv [get]
func (h *LinkHandler) ExportActivityCSV(c *gin.Context) {
	link, ok := h.ownedLink(c)
	if !ok {
		return
	}
	records, err := h.agg.Activity(c.Request.Context(), link)
	if err != nil {
		zap.S().Errorf("查询活动记录失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成报表失败"})
		return
	}
	data, err := export.ActivityCSV(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "渲染 CSV 失败"})
		return
	}
	sendCSV(c, fmt.Sprintf("activity_%s.csv", link.TargetReference), data)
}

// GetStats godoc
// @Summary 我的汇总统计
// @Tags Link
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} store.OwnerTotals
// @Router /api/stats [get]
func (h *LinkHandler) GetStats(c *gin.Context) {
	totals, err := h.svc.OwnerStats(c.Request.Context(), currentUserID(c))
	if err != nil {
		zap.S().Errorf("查询统计失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取统计失败"})
		return
	}
	c.JSON(http.StatusOK, totals)
}

// ownedLink 取路径里的 link_id 并校验所有权，失败时已写好响应
func (h *LinkHandler) ownedLink(c *gin.Context) (*model.TrackedLink, bool) {
	l, err := h.svc.GetOwnedLink(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		if isDenied(err) {
			denyLink(c)
			return nil, false
		}
		zap.S().Errorf("查询链接失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查询链接失败"})
		return nil, false
	}
	return l, true
}

// isDenied 不存在和无权访问走同一个出口
func isDenied(err error) bool {
	return errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrAccessDenied)
}

// denyLink 对外不区分链接不存在和无权访问，避免泄露他人链接的存在性
func denyLink(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "链接不存在或无权访问"})
}

func currentUserID(c *gin.Context) uint {
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

func sendCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
