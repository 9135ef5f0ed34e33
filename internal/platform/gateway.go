package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GatewayClient 机器人网关的 HTTP 客户端实现
// 网关持有与消息平台的长连接，这里只发两类小的 JSON 查询
type GatewayClient struct {
	baseURL string
	client  *http.Client
}

// NewGatewayClient 创建网关客户端
func NewGatewayClient(baseURL string, timeout time.Duration) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ResolveChat 解析目标用户名，GET /chats/{target}
func (g *GatewayClient) ResolveChat(ctx context.Context, target string) (ChatBinding, error) {
	var binding ChatBinding
	endpoint := fmt.Sprintf("%s/chats/%s", g.baseURL, url.PathEscape(target))
	if err := g.getJSON(ctx, endpoint, &binding); err != nil {
		return ChatBinding{}, fmt.Errorf("解析会话 %s 失败: %w", target, err)
	}
	return binding, nil
}

// MemberStatus 查询成员状态，GET /chats/{ref}/members/{userID}
func (g *GatewayClient) MemberStatus(ctx context.Context, chatRef string, userID int64) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	endpoint := fmt.Sprintf("%s/chats/%s/members/%d", g.baseURL, url.PathEscape(chatRef), userID)
	if err := g.getJSON(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("查询成员状态失败: %w", err)
	}
	return resp.Status, nil
}

func (g *GatewayClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("网关返回状态码 %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
