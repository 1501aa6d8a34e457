package swap

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultShareTitle 分享标题默认值
const DefaultShareTitle = "Shift Swap Request"

// ShareMessage 交给外部分享机制的内容
type ShareMessage struct {
	Title string
	Text  string
}

// Compose 生成申请的纯文本摘要。对任何合法申请都不会失败，输出确定。
func Compose(r SwapRequest) ShareMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Shift swap request from %s to %s\n", partyLabel(r.Requester), partyLabel(r.Counterparty))
	fmt.Fprintf(&b, "Giving: %s\n", describeShift(r.GivenShift))
	fmt.Fprintf(&b, "Taking: %s\n", describeShift(r.TakenShift))
	fmt.Fprintf(&b, "Status: %s", strings.ToUpper(string(r.Status)))
	return ShareMessage{Title: DefaultShareTitle, Text: b.String()}
}

// WithTitle 替换标题
func (m ShareMessage) WithTitle(title string) ShareMessage {
	if title != "" {
		m.Title = title
	}
	return m
}

// FallbackURL 原生分享不可用时使用的外链：base + 百分号编码后的文本
func (m ShareMessage) FallbackURL(base string) string {
	return base + PercentEncode(m.Text)
}

// PercentEncode 按 RFC 3986 编码，空格编码为 %20
func PercentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func partyLabel(p Party) string {
	switch {
	case p.Name != "":
		return p.Name
	case p.UserID != "":
		return p.UserID
	}
	return "unknown"
}

func describeShift(s Shift) string {
	parts := make([]string, 0, 2)
	if s.Date != "" {
		parts = append(parts, s.Date)
	}
	if s.TimeRange != "" {
		parts = append(parts, s.TimeRange)
	}
	desc := strings.Join(parts, " ")
	if s.ShiftType != "" {
		if desc == "" {
			return s.ShiftType
		}
		desc += " (" + s.ShiftType + ")"
	}
	if desc == "" {
		return "unspecified"
	}
	return desc
}

// ── 外部分享协作方 ──

// NativeSharer 系统原生分享；不可用时返回 ErrShareUnavailable
type NativeSharer interface {
	Share(ctx context.Context, title, text string) error
}

// LinkOpener 打开外部链接
type LinkOpener interface {
	OpenLink(ctx context.Context, rawURL string) error
}

// ShareChannel 实际使用的分享通道
type ShareChannel string

const (
	ChannelNative ShareChannel = "native"
	ChannelLink   ShareChannel = "link"
)

// Dispatch 优先原生分享，不可用时回退到外链
func Dispatch(ctx context.Context, native NativeSharer, opener LinkOpener, msg ShareMessage, fallbackBase string) (ShareChannel, error) {
	if native != nil {
		err := native.Share(ctx, msg.Title, msg.Text)
		if err == nil {
			return ChannelNative, nil
		}
		if !errors.Is(err, ErrShareUnavailable) {
			return "", err
		}
	}
	if opener == nil {
		return "", ErrShareUnavailable
	}
	if err := opener.OpenLink(ctx, msg.FallbackURL(fallbackBase)); err != nil {
		return "", err
	}
	return ChannelLink, nil
}
