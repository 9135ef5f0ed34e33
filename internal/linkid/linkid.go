package linkid

import (
	"crypto/rand"
	"errors"
	"math/big"
	"regexp"
	"strings"
)

const (
	// Charset 短码字符集，小写字母+数字，保证深链紧凑
	Charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	// CodeLength 短码长度
	CodeLength = 3
	// MaxLength link_id 的总长度上限
	MaxLength = 64
	// Separator link_id 各段之间的分隔符
	Separator = "-"
	// maxTargetLength 规范化后目标段的上限
	maxTargetLength = 50
)

// ErrBadPayload 深链载荷无法拆分出 target 和 code
var ErrBadPayload = errors.New("invalid link payload")

var (
	invalidChars = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	dashRuns     = regexp.MustCompile(`[\s-]+`)
	usernameOnly = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// NewCode 使用加密安全的随机数生成器生成一个短码
func NewCode() (string, error) {
	b := make([]byte, CodeLength)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}

// NormalizeTarget 把目标引用规范化为可嵌入 link_id 的形式:
// 去掉字母数字/空白/连字符以外的字符，空白和连字符折叠为单个 "-"，转小写
func NormalizeTarget(target string) string {
	slug := invalidChars.ReplaceAllString(target, "")
	slug = dashRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	slug = strings.ToLower(slug)
	if len(slug) > maxTargetLength {
		slug = slug[:maxTargetLength]
	}
	return slug
}

// Build 拼接 link_id = <target>-<code>
// 总长度超过 MaxLength 时截断 target，code 始终保持完整
func Build(target, code string) string {
	max := MaxLength - len(code) - len(Separator)
	if len(target) > max {
		target = target[:max]
	}
	return target + Separator + code
}

// Parse 拆分深链载荷 target-code[-source]
// 前两段为 target 和 code，剩余部分重新拼回作为 source 标签
func Parse(payload string) (target, code, source string, err error) {
	parts := strings.Split(payload, Separator)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", ErrBadPayload
	}
	target = parts[0]
	code = parts[1]
	if len(parts) > 2 {
		source = strings.Join(parts[2:], Separator)
	}
	return target, code, source, nil
}

// ExtractTarget 从用户输入中提取目标用户名
// 支持 @username、t.me/username、完整 URL 等形式
func ExtractTarget(input string) string {
	input = strings.TrimSpace(input)
	var target string
	if idx := strings.LastIndex(input, "t.me/"); idx >= 0 {
		target = input[idx+len("t.me/"):]
		target = strings.SplitN(target, "/", 2)[0]
		target = strings.SplitN(target, "?", 2)[0]
	} else {
		target = strings.ReplaceAll(input, "@", "")
		target = strings.ReplaceAll(target, "https://", "")
	}
	return usernameOnly.ReplaceAllString(target, "")
}
